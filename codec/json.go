package codec

import (
	"bytes"
	"encoding/json"

	gojson "github.com/goccy/go-json"
)

// JSON is the standard-library layout codec.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes exactly one JSON document into v, rejecting unknown
// fields.
func (JSON) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Name returns "json".
func (JSON) Name() string { return "json" }

// GoJSON is the layout codec backed by github.com/goccy/go-json. It is the
// default.
type GoJSON struct{}

// Marshal encodes the value to JSON.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.Marshal(v) }

// Unmarshal decodes exactly one JSON document into v, rejecting unknown
// fields.
func (GoJSON) Unmarshal(data []byte, v any) error {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }

// Append encodes the value without HTML escaping and appends it to dst.
func (GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := gojson.MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
