package strategy

import (
	"encoding/binary"
	"reflect"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/compound/member"
)

var (
	bitSetPtrType  = reflect.TypeFor[*bitset.BitSet]()
	bitSetType     = reflect.TypeFor[bitset.BitSet]()
	roaringPtrType = reflect.TypeFor[*roaring.Bitmap]()
)

// BitSet stores a boolean set as Dims[0] little-endian 64-bit words.
//
// It encodes *bitset.BitSet, bitset.BitSet, *roaring.Bitmap and []uint64
// and decodes to *bitset.BitSet unless the destination asks for another of
// these types.
type BitSet struct{}

// Name implements Strategy.
func (BitSet) Name() string { return "bitset" }

// CanHandle implements Strategy.
func (BitSet) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeBitSet || (ext != nil && (ext.Class == member.ClassBitField || ext.Variant == member.VariantBitField))
}

// NewCodec implements Strategy.
func (BitSet) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassBitField, member.ClassInteger); err != nil {
		return nil, err
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, member.Mappingf(d.Name(), "bitset member needs exactly one dimension (word count), got %d", len(dims))
	}
	if ext != nil && ext.Size != 0 && ext.Size != 8 {
		return nil, member.Mappingf(d.Name(), "bitset words must be 8 bytes, got %d", ext.Size)
	}
	return bitSetCodec{name: d.Name(), words: dims[0]}, nil
}

type bitSetCodec struct {
	name  string
	words int
}

func (c bitSetCodec) Size() int { return 8 * c.words }

func (c bitSetCodec) Storage() member.StorageType {
	return member.StorageType{Class: member.ClassBitField, Size: 8, Dims: []int{c.words}, Variant: member.VariantBitField}
}

func (c bitSetCodec) Put(dst []byte, v reflect.Value) error {
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	words, err := c.hostWords(v)
	if err != nil {
		return err
	}
	for i := len(words) - 1; i >= c.words; i-- {
		if words[i] != 0 {
			return &member.DimensionMismatchError{Member: c.name, Expected: c.words, Actual: i + 1}
		}
	}
	clear(dst)
	for i := 0; i < c.words && i < len(words); i++ {
		binary.LittleEndian.PutUint64(dst[8*i:], words[i])
	}
	return nil
}

func (c bitSetCodec) hostWords(v reflect.Value) ([]uint64, error) {
	if !v.IsValid() {
		return nil, nil
	}
	switch v.Type() {
	case bitSetPtrType:
		if v.IsNil() {
			return nil, nil
		}
		return v.Interface().(*bitset.BitSet).Words(), nil
	case bitSetType:
		b := v.Interface().(bitset.BitSet)
		return b.Words(), nil
	case roaringPtrType:
		if v.IsNil() {
			return nil, nil
		}
		rb := v.Interface().(*roaring.Bitmap)
		if rb.IsEmpty() {
			return nil, nil
		}
		// Check the highest word before allocating.
		last := uint64(rb.Maximum()) / 64
		if last >= uint64(c.words) {
			return nil, &member.DimensionMismatchError{Member: c.name, Expected: c.words, Actual: int(last) + 1}
		}
		words := make([]uint64, last+1)
		it := rb.Iterator()
		for it.HasNext() {
			i := it.Next()
			words[i/64] |= 1 << (i % 64)
		}
		return words, nil
	}
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		return c.hostWords(v.Elem())
	}
	if (v.Kind() == reflect.Slice || v.Kind() == reflect.Array) && v.Type().Elem().Kind() == reflect.Uint64 {
		words := make([]uint64, v.Len())
		for i := range words {
			words[i] = v.Index(i).Uint()
		}
		return words, nil
	}
	return nil, member.Valuef(c.name, "cannot encode %s as bitset", v.Type())
}

func (c bitSetCodec) Get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	words := make([]uint64, c.words)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(src[8*i:])
	}
	t := dst.Type()
	switch {
	case dst.Kind() == reflect.Interface:
		if !bitSetPtrType.AssignableTo(t) {
			return member.Valuef(c.name, "cannot decode bitset into %s", t)
		}
		dst.Set(reflect.ValueOf(bitset.From(words)))
	case t == bitSetPtrType:
		dst.Set(reflect.ValueOf(bitset.From(words)))
	case t == bitSetType:
		dst.Set(reflect.ValueOf(bitset.From(words)).Elem())
	case t == roaringPtrType:
		rb := roaring.New()
		bs := bitset.From(words)
		for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
			rb.Add(uint32(i))
		}
		dst.Set(reflect.ValueOf(rb))
	case dst.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint64:
		dst.Set(reflect.ValueOf(words).Convert(t))
	case dst.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint64:
		if dst.Len() != c.words {
			return &member.DimensionMismatchError{Member: c.name, Expected: c.words, Actual: dst.Len()}
		}
		for i, w := range words {
			dst.Index(i).SetUint(w)
		}
	default:
		return member.Valuef(c.name, "cannot decode bitset into %s", t)
	}
	return nil
}
