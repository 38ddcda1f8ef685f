package member

import "sync"

// VariantRegistry records type variants separately from the stored bytes,
// keyed by record name and member name. The empty member name holds the
// record-level variant.
//
// A registry is scoped to one schema compilation session and handed to the
// schema builder explicitly. It is safe for concurrent use.
type VariantRegistry struct {
	mu       sync.RWMutex
	variants map[variantKey]Variant
}

type variantKey struct {
	record string
	member string
}

// NewVariantRegistry returns an empty registry.
func NewVariantRegistry() *VariantRegistry {
	return &VariantRegistry{variants: make(map[variantKey]Variant)}
}

// Set tags member of record with v. VariantNone removes the tag.
func (r *VariantRegistry) Set(record, member string, v Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := variantKey{record, member}
	if v == VariantNone {
		delete(r.variants, k)
		return
	}
	r.variants[k] = v
}

// Get returns the tag of member of record.
func (r *VariantRegistry) Get(record, member string) (Variant, bool) {
	if r == nil {
		return VariantNone, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[variantKey{record, member}]
	return v, ok
}

// Record returns the record-level variant.
func (r *VariantRegistry) Record(record string) Variant {
	v, _ := r.Get(record, "")
	return v
}
