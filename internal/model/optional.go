package model

import (
	"bytes"
	"encoding/json"
)

// Optional is a field of a partial-update payload. It records whether the
// key was present in the request body and whether it carried an explicit
// JSON null, so that an absent key and a null can be told apart.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns an Optional that was sent as an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present,
// which is what marks the field as set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON writes the value, or null when unset or null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// ValidationValue exposes the carried value to the validator. Unset and
// null fields yield nil so that "omitempty" rules skip them.
func (o Optional[T]) ValidationValue() interface{} {
	if !o.Set || o.Null {
		return nil
	}
	return o.Value
}

// ColumnSet collects the columns an update payload will write.
type ColumnSet struct {
	Values map[string]interface{}
	// NullRequired lists required columns the payload tried to set to null.
	NullRequired []string
	// Required lists required columns the payload sets to a value.
	Required []string
}

func newColumnSet() *ColumnSet {
	return &ColumnSet{Values: make(map[string]interface{})}
}

// Empty reports whether the payload carried no columns at all.
func (c *ColumnSet) Empty() bool {
	return len(c.Values) == 0 && len(c.NullRequired) == 0
}

func putRequired[T any](c *ColumnSet, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		c.NullRequired = append(c.NullRequired, column)
		return
	}
	c.Required = append(c.Required, column)
	c.Values[column] = o.Value
}

// putNullable writes o, clearing the column when the payload sent null.
func putNullable[T any](c *ColumnSet, column string, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		c.Values[column] = nil
		return
	}
	c.Values[column] = o.Value
}

// nullable turns a pointer into a driver argument, nil for a nil pointer.
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
