//go:build amd64 || arm64

package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecked(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() (uint64, error)
		want    uint64
		wantErr bool
	}{
		{"int to uint32", func() (uint64, error) { v, err := IntToUint32(123); return uint64(v), err }, 123, false},
		{"int to uint32 max", func() (uint64, error) { v, err := IntToUint32(math.MaxUint32); return uint64(v), err }, math.MaxUint32, false},
		{"int to uint32 negative", func() (uint64, error) { v, err := IntToUint32(-1); return uint64(v), err }, 0, true},
		{"int to uint32 too large", func() (uint64, error) { v, err := IntToUint32(math.MaxUint32 + 1); return uint64(v), err }, 0, true},
		{"uint32 to int", func() (uint64, error) { v, err := Uint32ToInt(math.MaxUint32); return uint64(v), err }, math.MaxUint32, false},
		{"uint64 to int", func() (uint64, error) { v, err := Uint64ToInt(42); return uint64(v), err }, 42, false},
		{"uint64 to int too large", func() (uint64, error) { v, err := Uint64ToInt(math.MaxUint64); return uint64(v), err }, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrOverflow))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
