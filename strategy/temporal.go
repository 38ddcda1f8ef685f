package strategy

import (
	"encoding/binary"
	"reflect"
	"time"

	"github.com/hupe1980/compound/member"
)

var (
	stdDurationType = reflect.TypeFor[time.Duration]()
	durationType    = reflect.TypeFor[member.Duration]()
	timeType        = reflect.TypeFor[time.Time]()
)

// Duration stores a time span as a signed 64-bit count in the unit of the
// member's duration variant.
type Duration struct{}

// Name implements Strategy.
func (Duration) Name() string { return "duration" }

// CanHandle implements Strategy.
func (Duration) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeDuration || (ext != nil && ext.Variant.IsDuration())
}

// NewCodec implements Strategy.
func (Duration) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassInteger); err != nil {
		return nil, err
	}
	variant := d.Variant()
	if ext != nil && ext.Variant.IsDuration() {
		variant = ext.Variant
	}
	unit, ok := variant.Unit()
	if !ok {
		unit = member.DefaultTimeUnit
		variant = member.DurationVariant(unit)
	}
	if ext != nil && ext.Size != 0 && ext.Size != 8 {
		return nil, member.Mappingf(d.Name(), "duration storage must be 8 bytes, got %d", ext.Size)
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), durationElem{name: d.Name(), unit: unit, variant: variant}, dims), nil
}

type durationElem struct {
	name    string
	unit    member.TimeUnit
	variant member.Variant
}

func (durationElem) width() int { return 8 }

func (e durationElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassInteger, Size: 8, Signed: true, Variant: e.variant}
}

func (durationElem) canonical(*ReadOptions) reflect.Type { return durationType }

func (e durationElem) put(dst []byte, v reflect.Value) error {
	var n int64
	switch v.Type() {
	case stdDurationType:
		n = member.Convert(v.Int(), member.Nanoseconds, e.unit)
	case durationType:
		d := v.Interface().(member.Duration)
		if d.Unit == 0 {
			d.Unit = e.unit
		}
		n = d.In(e.unit).Value
	default:
		x, err := hostInt(e.name, v)
		if err != nil {
			return err
		}
		n = int64(x)
	}
	binary.LittleEndian.PutUint64(dst, uint64(n))
	return nil
}

func (e durationElem) get(src []byte, dst reflect.Value, ro *ReadOptions) error {
	n := int64(binary.LittleEndian.Uint64(src))
	unit := e.unit
	if ro.DurationUnit.Valid() {
		unit = ro.DurationUnit
	}
	switch dst.Type() {
	case stdDurationType:
		dst.SetInt(member.Convert(n, e.unit, member.Nanoseconds))
	case durationType:
		dst.Set(reflect.ValueOf(member.Duration{Value: n, Unit: e.unit}.In(unit)))
	default:
		return setInt(e.name, dst, member.Convert(n, e.unit, unit))
	}
	return nil
}

func (durationElem) bulk(reflect.Type) bool { return false }

// Timestamp stores a time.Time as signed 64-bit milliseconds since the Unix
// epoch. Decoded times are in UTC.
type Timestamp struct{}

// Name implements Strategy.
func (Timestamp) Name() string { return "timestamp" }

// CanHandle implements Strategy.
func (Timestamp) CanHandle(d member.Descriptor, ext *member.StorageType) bool {
	return d.Type() == member.TypeTime || (ext != nil && ext.Variant == member.VariantTimestampMillis)
}

// NewCodec implements Strategy.
func (Timestamp) NewCodec(d member.Descriptor, ext *member.StorageType, _ Env) (Codec, error) {
	if err := storageClass(d, ext, member.ClassInteger); err != nil {
		return nil, err
	}
	if ext != nil && ext.Size != 0 && ext.Size != 8 {
		return nil, member.Mappingf(d.Name(), "timestamp storage must be 8 bytes, got %d", ext.Size)
	}
	dims, err := dimsOf(d, ext)
	if err != nil {
		return nil, err
	}
	return newShaped(d.Name(), timeElem{name: d.Name()}, dims), nil
}

type timeElem struct {
	name string
}

func (timeElem) width() int { return 8 }

func (timeElem) storage() member.StorageType {
	return member.StorageType{Class: member.ClassInteger, Size: 8, Signed: true, Variant: member.VariantTimestampMillis}
}

func (timeElem) canonical(*ReadOptions) reflect.Type { return timeType }

func (e timeElem) put(dst []byte, v reflect.Value) error {
	var ms int64
	if v.Type() == timeType {
		ms = v.Interface().(time.Time).UnixMilli()
	} else {
		x, err := hostInt(e.name, v)
		if err != nil {
			return err
		}
		ms = int64(x)
	}
	binary.LittleEndian.PutUint64(dst, uint64(ms))
	return nil
}

func (e timeElem) get(src []byte, dst reflect.Value, _ *ReadOptions) error {
	ms := int64(binary.LittleEndian.Uint64(src))
	if dst.Type() == timeType {
		dst.Set(reflect.ValueOf(time.UnixMilli(ms).UTC()))
		return nil
	}
	return setInt(e.name, dst, ms)
}

func (timeElem) bulk(reflect.Type) bool { return false }
