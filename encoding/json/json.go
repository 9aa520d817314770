//go:build !sonic

// Package json wraps the JSON codec used across the module so an alternative
// backend can be swapped in with a build tag.
package json

import "encoding/json"

// Implementation is the name of the codec compiled in
const Implementation = "encoding/json"

// RawMessage is a raw encoded JSON value
type RawMessage = json.RawMessage

var (
	// Marshal encodes v into JSON
	Marshal = json.Marshal
	// MarshalIndent encodes v into indented JSON
	MarshalIndent = json.MarshalIndent
	// Unmarshal decodes JSON data into v
	Unmarshal = json.Unmarshal
	// Valid reports whether data is valid JSON
	Valid = json.Valid
)
