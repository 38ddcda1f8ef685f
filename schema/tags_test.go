package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compound/member"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		raw  string
		want tag
	}{
		{"-", tag{skip: true, offset: member.Packed}},
		{"", tag{offset: member.Packed}},
		{"label,len=8", tag{name: "label", length: 8, offset: member.Packed}},
		{",dims=2x3,unsigned", tag{dims: []int{2, 3}, unsigned: true, offset: member.Packed}},
		{"s,varlen", tag{name: "s", varLen: true, offset: member.Packed}},
		{"s,len=4,explicitlen", tag{name: "s", length: 4, explicitLen: true, offset: member.Packed}},
		{"r,ref", tag{name: "r", ref: true, offset: member.Packed}},
		{"d,variant=hours", tag{name: "d", variant: member.VariantDurationHours, offset: member.Packed}},
		{"c,enum=Color,offset=12", tag{name: "c", enum: "Color", offset: 12}},
		{"n,size=2", tag{name: "n", size: 2, offset: member.Packed}},
		{"n, len=3 ,", tag{name: "n", length: 3, offset: member.Packed}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseTag("F", tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTagErrors(t *testing.T) {
	for _, raw := range []string{
		"x,len=abc",
		"x,len=-1",
		"x,dims=",
		"x,dims=2xq",
		"x,variant=fortnights",
		"x,enum=",
		"x,bogus",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := parseTag("F", raw)
			assert.True(t, errors.Is(err, member.ErrMapping))
		})
	}
}

func TestFormatDims(t *testing.T) {
	assert.Equal(t, "2x3", FormatDims([]int{2, 3}))
	dims, err := parseDims(FormatDims([]int{4, 1, 7}))
	require.NoError(t, err)
	assert.Equal(t, []int{4, 1, 7}, dims)
}
