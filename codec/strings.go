package codec

import (
	"bytes"
	"strings"

	"github.com/hupe1980/compound/internal/conv"
	"github.com/hupe1980/compound/member"
	"github.com/hupe1980/compound/strategy"
)

// StringBlock is a rectangular encoding of a string array: Count elements
// of Width bytes each, NUL padded.
type StringBlock struct {
	Width int
	Count int
	Data  []byte
	// Lengths holds the byte length of every element. It is nil when every
	// element is non-empty and free of zero bytes, so NUL termination
	// recovers it.
	Lengths []uint32
}

// EncodeStrings encodes values into a StringBlock. A width of 0 uses the
// longest encoded value (at least 1 byte); a positive width truncates longer
// values at a rune boundary.
func EncodeStrings(values []string, width int) (StringBlock, error) {
	if width < 0 {
		return StringBlock{}, member.Valuef("", "negative string width %d", width)
	}

	// First pass: realized width and whether lengths must be recorded.
	explicit := false
	realized := 0
	for _, s := range values {
		realized = max(realized, len(s))
		if s == "" || strings.IndexByte(s, 0) >= 0 {
			explicit = true
		}
	}
	if width == 0 {
		width = max(realized, 1)
	}

	// Second pass: fill the rectangle.
	b := StringBlock{
		Width: width,
		Count: len(values),
		Data:  make([]byte, width*len(values)),
	}
	if explicit {
		b.Lengths = make([]uint32, len(values))
	}
	for i, s := range values {
		p := strategy.Truncate([]byte(s), width)
		copy(b.Data[i*width:], p)
		if explicit {
			n, err := conv.IntToUint32(len(p))
			if err != nil {
				return StringBlock{}, member.WrapValue("", "string length", err)
			}
			b.Lengths[i] = n
		}
	}
	return b, nil
}

// At returns element i.
func (b StringBlock) At(i int) string {
	p := b.Data[i*b.Width : (i+1)*b.Width]
	if b.Lengths != nil {
		return string(p[:min(int(b.Lengths[i]), b.Width)])
	}
	if n := bytes.IndexByte(p, 0); n >= 0 {
		p = p[:n]
	}
	return string(p)
}

// Strings decodes every element.
func (b StringBlock) Strings() []string {
	out := make([]string, b.Count)
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

// Storage returns the storage type of the block as one string array.
func (b StringBlock) Storage() member.StorageType {
	return member.StorageType{
		Class:          member.ClassString,
		Size:           b.Width,
		Dims:           []int{b.Count},
		ExplicitLength: b.Lengths != nil,
	}
}
