//go:build sonic

package json

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Implementation is the name of the codec compiled in
const Implementation = "bytedance/sonic"

// RawMessage is a raw encoded JSON value
type RawMessage = json.RawMessage

var (
	// Marshal encodes v into JSON
	Marshal = sonic.ConfigStd.Marshal
	// MarshalIndent encodes v into indented JSON
	MarshalIndent = sonic.ConfigStd.MarshalIndent
	// Unmarshal decodes JSON data into v
	Unmarshal = sonic.ConfigStd.Unmarshal
	// Valid reports whether data is valid JSON
	Valid = sonic.ConfigStd.Valid
)
