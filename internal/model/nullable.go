package model

import (
	"bytes"
	"encoding/json"
)

// Nullable is an optional JSON field that remembers whether it was present.
// An explicit null sets Set with a nil Value, which clears the column;
// a missing key leaves Set false.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a present null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ApplyTo overwrites *dst when the field was present.
func (n Nullable[T]) ApplyTo(dst **T) {
	if n.Set {
		*dst = n.Value
	}
}
