package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396):
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// Some returns a present OptionalString holding s
func Some(s string) OptionalString {
	return OptionalString{Present: true, Value: &s}
}

// Null returns a present OptionalString holding JSON null
func Null() OptionalString {
	return OptionalString{Present: true}
}

// UnmarshalJSON is only invoked when the field exists in the payload.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// MarshalJSON writes null for absent or cleared values
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// OrEmpty returns the held string, or "" when absent or null
func (o OptionalString) OrEmpty() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}
