package strategy

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"unicode/utf8"

	"github.com/hupe1980/compound/internal/conv"
	"github.com/hupe1980/compound/member"
)

// LengthPrefix is the byte size of the length stored ahead of an
// explicit-length string.
const LengthPrefix = 4

// HandleSize is the byte size of variable-length string and reference
// handles.
const HandleSize = 8

// String stores fixed-length strings zero padded in Length bytes, or
// variable-length strings as handles into the engine's VarLenStore.
//
// Fixed strings are NUL terminated unless the member uses ExplicitLength,
// in which case a 4-byte little-endian length precedes the payload. Values
// longer than Length are truncated at a UTF-8 rune boundary.
type String struct{}

// Name implements Strategy.
func (String) Name() string { return "string" }

// CanHandle implements Strategy.
func (String) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeString || (ext != nil && ext.Class == member.ClassString)
}

// NewCodec implements Strategy.
func (String) NewCodec(d member.Descriptor, ext *member.StorageType, env Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassString); err != nil {
		return nil, err
	}
	varLen, explicit, length := d.VariableLength(), d.ExplicitLength(), d.Length()
	if ext != nil {
		varLen, explicit = ext.VariableLength, ext.ExplicitLength
		if !varLen {
			length = ext.Size
			if explicit {
				length -= LengthPrefix
			}
		}
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	if varLen {
		if env.VarLen == nil {
			return nil, member.Mappingf(d.Name(), "variable-length string needs a VarLenStore")
		}
		return newShaped(d.Name(), varStringElem{name: d.Name(), store: env.VarLen}, dims), nil
	}
	if length <= 0 {
		return nil, member.Mappingf(d.Name(), "fixed-length string declares length %d", length)
	}
	return newShaped(d.Name(), stringElem{name: d.Name(), length: length, explicit: explicit}, dims), nil
}

// Truncate shortens s to at most n bytes without splitting a UTF-8 rune.
func Truncate(s []byte, n int) []byte {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func hostString(name string, v reflect.Value) ([]byte, error) {
	switch {
	case v.Kind() == reflect.String:
		return []byte(v.String()), nil
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8:
		return v.Bytes(), nil
	}
	return nil, member.Valuef(name, "cannot encode %s as string", v.Type())
}

func setString(name string, dst reflect.Value, b []byte) error {
	switch {
	case dst.Kind() == reflect.String:
		dst.SetString(string(b))
	case dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8:
		dst.SetBytes(bytes.Clone(b))
	default:
		return member.Valuef(name, "cannot decode string into %s", dst.Type())
	}
	return nil
}

type stringElem struct {
	name     string
	length   int
	explicit bool
}

func (e stringElem) width() int {
	if e.explicit {
		return LengthPrefix + e.length
	}
	return e.length
}

func (e stringElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassString, Size: e.width(), ExplicitLength: e.explicit}
}

func (stringElem) canonical(*ReadOptions) reflect.Type { return reflect.TypeFor[string]() }

func (e stringElem) put(dst []byte, v reflect.Value) error {
	s, err := hostString(e.name, v)
	if err != nil {
		return err
	}
	s = Truncate(s, e.length)
	if e.explicit {
		n, err := conv.IntToUint32(len(s))
		if err != nil {
			return member.WrapValue(e.name, "string length", err)
		}
		binary.LittleEndian.PutUint32(dst, n)
		dst = dst[LengthPrefix:]
	}
	n := copy(dst, s)
	clear(dst[n:])
	return nil
}

func (e stringElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	var s []byte
	if e.explicit {
		n, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(src))
		if err != nil || n > e.length {
			return member.Valuef(e.name, "stored string length %d exceeds width %d", binary.LittleEndian.Uint32(src), e.length)
		}
		s = src[LengthPrefix : LengthPrefix+n]
	} else {
		s = src
		if i := bytes.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
	}
	return setString(e.name, dst, s)
}

func (stringElem) bulk(reflect.Type) bool { return false }

type varStringElem struct {
	name  string
	store VarLenStore
}

func (varStringElem) width() int { return HandleSize }

func (varStringElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassString, Size: HandleSize, VariableLength: true}
}

func (varStringElem) canonical(*ReadOptions) reflect.Type { return reflect.TypeFor[string]() }

func (e varStringElem) put(dst []byte, v reflect.Value) error {
	s, err := hostString(e.name, v)
	if err != nil {
		return err
	}
	h, err := e.store.Put(s)
	if err != nil {
		return member.WrapValue(e.name, "store variable-length string", err)
	}
	binary.LittleEndian.PutUint64(dst, h)
	return nil
}

func (e varStringElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	b, err := e.store.Get(binary.LittleEndian.Uint64(src))
	if err != nil {
		return member.WrapValue(e.name, "load variable-length string", err)
	}
	return setString(e.name, dst, b)
}

func (varStringElem) bulk(reflect.Type) bool { return false }
