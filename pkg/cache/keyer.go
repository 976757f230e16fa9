package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Keyer generates cache keys.
type Keyer interface {
	// HierarchyKey returns the key of a company snapshot loaded from the
	// named source.
	HierarchyKey(source, companyID string) string
}

// DefaultKeyer produces "hierarchy:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HierarchyKey implements Keyer. The parts are length-prefixed so that
// ("ab", "c") and ("a", "bc") never collide.
func (DefaultKeyer) HierarchyKey(source, companyID string) string {
	var b strings.Builder
	for _, part := range []string{source, companyID} {
		b.WriteString(strconv.Itoa(len(part)))
		b.WriteByte(':')
		b.WriteString(part)
	}
	return "hierarchy:" + Hash([]byte(b.String()))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// databases can share one cache backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer prefixes inner's keys. A nil inner means DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HierarchyKey implements Keyer.
func (k *ScopedKeyer) HierarchyKey(source, companyID string) string {
	return k.prefix + k.inner.HierarchyKey(source, companyID)
}
