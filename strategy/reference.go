package strategy

import (
	"encoding/binary"
	"reflect"

	"github.com/hupe1980/compound/member"
)

var referenceType = reflect.TypeFor[member.Reference]()

// Reference stores an opaque 8-byte handle to another record location.
// String sources and destinations are translated by the Env's
// ReferenceResolver.
type Reference struct{}

// Name implements Strategy.
func (Reference) Name() string { return "reference" }

// CanHandle implements Strategy.
func (Reference) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeReference || d.IsReference() || (ext != nil && ext.Class == member.ClassReference)
}

// NewCodec implements Strategy.
func (Reference) NewCodec(d member.Descriptor, ext *member.StorageType, env Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassReference); err != nil {
		return nil, err
	}
	if ext != nil && ext.Size != 0 && ext.Size != HandleSize {
		return nil, member.Mappingf(d.Name(), "reference storage must be %d bytes, got %d", HandleSize, ext.Size)
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), refElem{name: d.Name(), resolver: env.Resolver}, dims), nil
}

type refElem struct {
	name     string
	resolver ReferenceResolver
}

func (refElem) width() int { return HandleSize }

func (refElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassReference, Size: HandleSize}
}

func (refElem) canonical(*ReadOptions) reflect.Type { return referenceType }

func (e refElem) put(dst []byte, v reflect.Value) error {
	var h uint64
	switch {
	case v.Type() == referenceType:
		h = v.Uint()
	case v.Kind() == reflect.String:
		if e.resolver == nil {
			return member.Valuef(e.name, "no reference resolver for path %q", v.String())
		}
		ref, err := e.resolver.Resolve(v.String())
		if err != nil {
			return member.WrapValue(e.name, "resolve reference", err)
		}
		h = uint64(ref)
	default:
		x, err := hostInt(e.name, v)
		if err != nil {
			return err
		}
		h = x
	}
	binary.LittleEndian.PutUint64(dst, h)
	return nil
}

func (e refElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	h := binary.LittleEndian.Uint64(src)
	if dst.Kind() == reflect.String {
		if e.resolver == nil {
			return member.Valuef(e.name, "no reference resolver for %s", member.Reference(h))
		}
		p, err := e.resolver.Path(member.Reference(h))
		if err != nil {
			return member.WrapValue(e.name, "resolve reference", err)
		}
		dst.SetString(p)
		return nil
	}
	return setUint(e.name, dst, h)
}

func (refElem) bulk(reflect.Type) bool { return false }
