// Package variant holds the codecs for the hyphen-delimited identity strings
// the storefront speaks on the wire: cart keys ("productID-size-color"),
// stock entries ("size-color-quantity") and the checkout batch format.
// In-memory code works with the structured types; the delimited form exists
// only at the serialization boundary.
package variant

import (
	"strconv"
	"strings"

	"threadline/internal/domain"
)

const Delim = "-"

// Variant identifies a purchasable (product, size, color) tuple.
type Variant struct {
	ProductID string
	Size      string
	Color     string
}

// Key serializes the variant. Fields must be non-empty and must not contain
// the delimiter; ids, sizes and colors are validated against that constraint
// here rather than assumed safe.
func (v Variant) Key() (string, error) {
	for _, f := range []struct{ name, val string }{
		{"productID", v.ProductID},
		{"size", v.Size},
		{"color", v.Color},
	} {
		if f.val == "" {
			return "", domain.Errf(domain.KindValidation, "variant %s must not be empty", f.name)
		}
		if strings.Contains(f.val, Delim) {
			return "", domain.Errf(domain.KindValidation, "variant %s %q must not contain %q", f.name, f.val, Delim)
		}
	}
	return v.ProductID + Delim + v.Size + Delim + v.Color, nil
}

// ParseKey is the inverse of Key for any variant whose fields respect the
// delimiter constraint.
func ParseKey(key string) (Variant, error) {
	parts := strings.Split(key, Delim)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Variant{}, domain.Errf(domain.KindMalformedKey, "malformed variant key %q", key)
	}
	return Variant{ProductID: parts[0], Size: parts[1], Color: parts[2]}, nil
}

// Entry is one stock record: remaining quantity for a (size, color) of a
// product.
type Entry struct {
	Size  string
	Color string
	Qty   int
}

func (e Entry) String() string {
	return e.Size + Delim + e.Color + Delim + strconv.Itoa(e.Qty)
}

func ParseEntry(s string) (Entry, error) {
	parts := strings.Split(s, Delim)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Entry{}, domain.Errf(domain.KindCorruptStockEntry, "corrupt stock entry %q", s)
	}
	qty, err := strconv.Atoi(parts[2])
	if err != nil || qty < 0 {
		return Entry{}, domain.Errf(domain.KindCorruptStockEntry, "corrupt stock entry %q: bad quantity", s)
	}
	return Entry{Size: parts[0], Color: parts[1], Qty: qty}, nil
}

// ParseEntries decodes a product's stock entry strings. A duplicate
// (size, color) pair is rejected: a product owns at most one entry per
// variant.
func ParseEntries(raw []string) ([]Entry, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]Entry, 0, len(raw))
	for _, s := range raw {
		e, err := ParseEntry(s)
		if err != nil {
			return nil, err
		}
		k := e.Size + Delim + e.Color
		if seen[k] {
			return nil, domain.Errf(domain.KindCorruptStockEntry, "duplicate stock entry for %s", k)
		}
		seen[k] = true
		out = append(out, e)
	}
	return out, nil
}

// BatchLine is one decrement instruction from the checkout batch format.
type BatchLine struct {
	ProductID string
	Size      string
	Color     string
	Qty       int
}

// ParseBatch splits the comma-joined "<productID>-<size>-<color>-<quantity>"
// tuples submitted by checkout.
func ParseBatch(s string) ([]BatchLine, error) {
	if strings.TrimSpace(s) == "" {
		return nil, domain.Errf(domain.KindValidation, "product details string is missing")
	}
	var out []BatchLine
	for _, tuple := range strings.Split(s, ",") {
		parts := strings.Split(tuple, Delim)
		if len(parts) != 4 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, domain.Errf(domain.KindMalformedKey,
				"invalid format for %q, expected id-size-color-quantity", tuple)
		}
		qty, err := strconv.Atoi(parts[3])
		if err != nil || qty <= 0 {
			return nil, domain.Errf(domain.KindValidation,
				"quantity must be a positive integer in %q", tuple)
		}
		out = append(out, BatchLine{ProductID: parts[0], Size: parts[1], Color: parts[2], Qty: qty})
	}
	return out, nil
}

// SizeColorKey addresses a variant within one product, e.g. for quantity
// lookups.
func SizeColorKey(size, color string) string { return size + Delim + color }
