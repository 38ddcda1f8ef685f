package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/compound/member"
)

// TagKey is the struct tag key read by the declarative mode.
const TagKey = "compound"

// tag is a parsed `compound:"..."` struct tag.
type tag struct {
	skip        bool
	name        string
	length      int
	dims        []int
	unsigned    bool
	varLen      bool
	explicitLen bool
	ref         bool
	variant     member.Variant
	enum        string
	offset      int
	size        int
}

// parseTag parses
//
//	compound:"name,len=8,dims=2x3,unsigned,varlen,explicitlen,ref,variant=seconds,enum=Color,offset=12,size=2"
//
// The name may be empty. "-" excludes the field.
func parseTag(field, s string) (tag, error) {
	t := tag{offset: member.Packed}
	if s == "-" {
		t.skip = true
		return t, nil
	}
	parts := strings.Split(s, ",")
	t.name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		key, val, _ := strings.Cut(strings.TrimSpace(p), "=")
		var err error
		switch key {
		case "":
		case "len":
			t.length, err = tagInt(val)
		case "dims":
			t.dims, err = parseDims(val)
		case "unsigned":
			t.unsigned = true
		case "varlen":
			t.varLen = true
		case "explicitlen":
			t.explicitLen = true
		case "ref":
			t.ref = true
		case "variant":
			t.variant, err = member.ParseVariant(val)
		case "enum":
			if val == "" {
				err = fmt.Errorf("empty enumeration name")
			}
			t.enum = val
		case "offset":
			t.offset, err = tagInt(val)
		case "size":
			t.size, err = tagInt(val)
		default:
			err = fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return tag{}, member.Mappingf(field, "tag %q: %v", s, err)
		}
	}
	return t, nil
}

func tagInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative number %d", n)
	}
	return n, nil
}

// parseDims parses extents such as "4" or "2x3x5".
func parseDims(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty dimensions")
	}
	fields := strings.Split(s, "x")
	dims := make([]int, len(fields))
	for i, f := range fields {
		n, err := tagInt(f)
		if err != nil {
			return nil, err
		}
		dims[i] = n
	}
	return dims, nil
}

// FormatDims formats extents the way the dims tag option expects them.
func FormatDims(dims []int) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, "x")
}
