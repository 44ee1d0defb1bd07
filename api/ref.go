package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Ref is a reference to a related record. The backend sends references
// either as a bare id string or as the populated record itself; Ref decodes
// both into one shape so callers never inspect the payload again.
type Ref[T any] struct {
	id    string
	value *T
}

// RefTo returns an unpopulated reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{id: id}
}

// Populated returns a reference carrying the related record.
func Populated[T any](id string, v T) Ref[T] {
	return Ref[T]{id: id, value: &v}
}

// ID returns the referenced id, or "" when the reference is absent.
func (r Ref[T]) ID() string {
	return r.id
}

// Value returns the populated record, if the backend sent one.
func (r Ref[T]) Value() (T, bool) {
	if r.value == nil {
		var zero T
		return zero, false
	}
	return *r.value, true
}

// IsZero reports whether the reference is absent.
func (r Ref[T]) IsZero() bool {
	return r.id == "" && r.value == nil
}

// UnmarshalJSON accepts null, an id string, or an object with "_id"/"id".
func (r *Ref[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}

	switch b[0] {
	case '"':
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = Ref[T]{id: id}
		return nil
	case '{':
		var ids recordID
		if err := json.Unmarshal(b, &ids); err != nil {
			return err
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*r = Ref[T]{id: ids.id(), value: &v}
		return nil
	}
	return fmt.Errorf("reference must be a string or object, got %s", b)
}

// MarshalJSON writes the reference back as its id.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// recordID captures both id spellings the backend uses.
type recordID struct {
	MongoID string `json:"_id"`
	ID      string `json:"id"`
}

func (r recordID) id() string {
	if r.MongoID != "" {
		return r.MongoID
	}
	return r.ID
}

// Text is a string field the backend sometimes sends as a number.
type Text string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("text must be a string or number, got %s", b)
	}
	*t = Text(n.String())
	return nil
}

// Int returns the value as an integer, or 0 if it is not numeric.
func (t Text) Int() int {
	n, _ := strconv.Atoi(string(t))
	return n
}

// list decodes a payload that should be an array but is sometimes a single
// object or null.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = list[T]{}
		return nil
	}
	if b[0] == '{' {
		var one T
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*l = list[T]{one}
		return nil
	}
	var many []T
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	if many == nil {
		many = []T{}
	}
	*l = many
	return nil
}
