package services

import "encoding/json"

// Nullable distinguishes an absent JSON field from an explicit null in
// partial updates: {"description": null} clears the field, while leaving
// it out keeps the stored value.
type Nullable[T any] struct {
	Set   bool // key was present in the request body
	Valid bool // value was non-null
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns the value as a pointer, nil for an explicit null.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
