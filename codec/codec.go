// Package codec converts whole compound records to and from their fixed
// byte layout, and provides the JSON codecs used to exchange committed
// layouts with the storage engine.
//
// A layout document names its codec only out of band; both built-in codecs
// read what the other wrote.
package codec

import (
	"fmt"

	"github.com/hupe1980/compound/schema"
)

// Codec serializes layout documents.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the layout codec used when none is configured.
var Default Codec = GoJSON{}

// ByName returns a built-in layout codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// EncodeLayout validates l and serializes it with c (Default if nil).
func EncodeLayout(c Codec, l schema.Layout) ([]byte, error) {
	if c == nil {
		c = Default
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	b, err := c.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("codec %s: encode layout %q: %w", c.Name(), l.Name, err)
	}
	return b, nil
}

// DecodeLayout deserializes a layout with c (Default if nil) and validates
// it. Unknown document fields are rejected.
func DecodeLayout(c Codec, data []byte) (schema.Layout, error) {
	if c == nil {
		c = Default
	}
	var l schema.Layout
	if err := c.Unmarshal(data, &l); err != nil {
		return schema.Layout{}, fmt.Errorf("codec %s: decode layout: %w", c.Name(), err)
	}
	if err := l.Validate(); err != nil {
		return schema.Layout{}, err
	}
	return l, nil
}

// MustEncodeLayout is like EncodeLayout but panics on error.
func MustEncodeLayout(c Codec, l schema.Layout) []byte {
	b, err := EncodeLayout(c, l)
	if err != nil {
		panic(err)
	}
	return b
}
