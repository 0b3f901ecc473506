package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, method jwt.SigningMethod, key interface{}, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID:     "user-1",
		Name:       "Test User",
		IsEducator: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseToken(t *testing.T) {
	const secret = "parse-token-test-secret-32-chars!"

	token := signTestToken(t, jwt.SigningMethodHS256, []byte(secret), time.Hour)
	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Name != "Test User" || !claims.IsEducator {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := ParseToken(token, "a-different-secret-entirely-32ch"); err == nil {
		t.Fatalf("token signed with another secret must not parse")
	}

	expired := signTestToken(t, jwt.SigningMethodHS256, []byte(secret), -time.Minute)
	if _, err := ParseToken(expired, secret); err == nil {
		t.Fatalf("expired token must not parse")
	}
}

func TestParseTokenRejectsNonHMAC(t *testing.T) {
	const secret = "parse-token-test-secret-32-chars!"

	unsigned := signTestToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, time.Hour)
	if _, err := ParseToken(unsigned, secret); err == nil {
		t.Fatalf("alg=none token must not parse")
	}
}
