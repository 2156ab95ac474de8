package domain

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can tell "nothing to remove" from
// "insufficient stock" from "malformed input" without string matching.
type Kind string

const (
	KindMalformedKey      Kind = "malformed_key"
	KindCorruptStockEntry Kind = "corrupt_stock_entry"
	KindVariantNotFound   Kind = "variant_not_found"
	KindInsufficientStock Kind = "insufficient_stock"
	KindEmptyCart         Kind = "empty_cart"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	// KindConflict covers lost-update races and timed-out storage calls;
	// callers may retry.
	KindConflict Kind = "conflict"
)

type Fault struct {
	Kind Kind
	Msg  string
}

func (f *Fault) Error() string { return f.Msg }

func Errf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the fault kind, mapping context expiry to KindConflict so a
// timed-out storage call surfaces as retryable. Untyped errors yield "".
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindConflict
	}
	return ""
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
