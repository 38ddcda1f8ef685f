package strategy

import (
	"math"
	"reflect"

	"github.com/hupe1980/compound/member"
)

type int64er interface{ Int64() (int64, error) }

type float64er interface{ Float64() (float64, error) }

func isIntKind(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUintKind(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// hostInt returns the two's-complement bits of an integral host value.
// Floats must be integral; number-like strings (json.Number) are parsed.
func hostInt(name string, v reflect.Value) (uint64, error) {
	x, _, err := hostInteger(name, v)
	return x, err
}

// hostInteger is hostInt that also reports whether the value is negative,
// in which case x holds its int64 bits.
func hostInteger(name string, v reflect.Value) (x uint64, neg bool, err error) {
	switch k := v.Kind(); {
	case isIntKind(k):
		n := v.Int()
		return uint64(n), n < 0, nil
	case isUintKind(k):
		return v.Uint(), false, nil
	case isFloatKind(k):
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false, member.Valuef(name, "non-integral value %v", f)
		}
		if f >= 1<<64 || f < math.MinInt64 {
			return 0, false, member.Valuef(name, "value %v out of integer range", f)
		}
		if f >= math.MaxInt64 {
			return uint64(f), false, nil
		}
		return uint64(int64(f)), f < 0, nil
	case k == reflect.Bool:
		if v.Bool() {
			return 1, false, nil
		}
		return 0, false, nil
	}
	if v.CanInterface() {
		if n, ok := v.Interface().(int64er); ok {
			i, err := n.Int64()
			if err != nil {
				return 0, false, member.WrapValue(name, "parse integer", err)
			}
			return uint64(i), i < 0, nil
		}
	}
	return 0, false, member.Valuef(name, "cannot encode %s as integer", v.Type())
}

// hostFloat returns the value of a numeric host value as float64.
func hostFloat(name string, v reflect.Value) (float64, error) {
	switch k := v.Kind(); {
	case isFloatKind(k):
		return v.Float(), nil
	case isIntKind(k):
		return float64(v.Int()), nil
	case isUintKind(k):
		return float64(v.Uint()), nil
	}
	if v.CanInterface() {
		if n, ok := v.Interface().(float64er); ok {
			f, err := n.Float64()
			if err != nil {
				return 0, member.WrapValue(name, "parse float", err)
			}
			return f, nil
		}
	}
	return 0, member.Valuef(name, "cannot encode %s as float", v.Type())
}

// setInt stores a signed integer into an integer, unsigned, float or bool
// destination, truncating to the destination width.
func setInt(name string, dst reflect.Value, x int64) error {
	switch k := dst.Kind(); {
	case isIntKind(k):
		dst.SetInt(x)
	case isUintKind(k):
		dst.SetUint(uint64(x))
	case isFloatKind(k):
		dst.SetFloat(float64(x))
	case k == reflect.Bool:
		dst.SetBool(x != 0)
	default:
		return member.Valuef(name, "cannot decode integer into %s", dst.Type())
	}
	return nil
}

// setUint is setInt for unsigned values.
func setUint(name string, dst reflect.Value, x uint64) error {
	switch k := dst.Kind(); {
	case isIntKind(k):
		dst.SetInt(int64(x))
	case isUintKind(k):
		dst.SetUint(x)
	case isFloatKind(k):
		dst.SetFloat(float64(x))
	case k == reflect.Bool:
		dst.SetBool(x != 0)
	default:
		return member.Valuef(name, "cannot decode integer into %s", dst.Type())
	}
	return nil
}

// storageClass checks that a declared external storage type, if any, has
// one of the expected classes.
func storageClass(d member.Descriptor, ext *member.StorageType, want ...member.Class) error {
	if ext == nil {
		return nil
	}
	for _, c := range want {
		if ext.Class == c {
			return nil
		}
	}
	return member.Mappingf(d.Name(), "%s member cannot use %s storage", d.Type(), ext.Class)
}
