package store

import (
	"bytes"
	"encoding/json"
)

// Patch maps column names to new values. Keys that are absent are left untouched.
type Patch map[string]any

// Set records value for column, including zero values.
func (p Patch) Set(column string, value any) Patch {
	p[column] = value
	return p
}

// Has reports whether column is part of the patch.
func (p Patch) Has(column string) bool {
	_, ok := p[column]
	return ok
}

// Optional is a JSON field that remembers whether it was sent at all, and whether it
// was sent as null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some builds an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null builds an Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Assign copies o into p under column when it was sent. Null becomes a NULL write.
func Assign[T any](p Patch, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		p[column] = nil
		return
	}
	p[column] = o.Value
}
