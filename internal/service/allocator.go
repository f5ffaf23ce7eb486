package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// minimalPrice is the unit price charged for every populated voice/SMS
// category before the remainder is assigned.
var minimalPrice = decimal.NewFromInt(1)

// AllowanceQuantities are the four allowance amounts of a bundle
// submission.  A category with quantity zero is absent from the bundle.
type AllowanceQuantities struct {
	DataVolume int64 // MB
	OnnetMin   int64
	LocalMin   int64
	SMS        int64
}

// AllowancePrices is the per-category split of a bundle price.
type AllowancePrices struct {
	Data  decimal.Decimal
	Onnet decimal.Decimal
	Local decimal.Decimal
	SMS   decimal.Decimal
}

// Sum returns the total of the four category prices.
func (p AllowancePrices) Sum() decimal.Decimal {
	return p.Data.Add(p.Onnet).Add(p.Local).Add(p.SMS)
}

// AllocatePrices splits one bundle price across the populated allowance
// categories.  SMS, local and on-net each receive the minimal unit
// price when present, deducted from a running remainder.  Data absorbs
// the remainder when present; otherwise the first populated category in
// on-net → local → SMS order absorbs it on top of its unit price.
// Absent categories price at zero.
//
// This is a business heuristic, not an optimization: when the bundle
// price is smaller than the number of populated voice/SMS categories
// the remainder goes negative and is deliberately not clamped, so the
// invariant "prices sum to the bundle price" holds for any input with
// at least one populated category.
func AllocatePrices(bundlePrice decimal.Decimal, q AllowanceQuantities) AllowancePrices {
	var p AllowancePrices
	remainder := bundlePrice

	if q.SMS > 0 {
		p.SMS = minimalPrice
		remainder = remainder.Sub(minimalPrice)
	}
	if q.LocalMin > 0 {
		p.Local = minimalPrice
		remainder = remainder.Sub(minimalPrice)
	}
	if q.OnnetMin > 0 {
		p.Onnet = minimalPrice
		remainder = remainder.Sub(minimalPrice)
	}

	switch {
	case q.DataVolume > 0:
		p.Data = remainder
	case q.OnnetMin > 0:
		p.Onnet = p.Onnet.Add(remainder)
	case q.LocalMin > 0:
		p.Local = p.Local.Add(remainder)
	case q.SMS > 0:
		p.SMS = p.SMS.Add(remainder)
	}
	return p
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonIdentRe   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// NormalizePackageName converts a display name into the identifier
// suffix used in mageypackid: whitespace runs become underscores, every
// other non [A-Za-z0-9_] character is stripped, and the result is
// upper-cased.  "5GB Booster!" -> "5GB_BOOSTER".
func NormalizePackageName(name string) string {
	s := whitespaceRe.ReplaceAllString(name, "_")
	s = nonIdentRe.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

// MageyPackID derives the immutable package grouping key from the base
// recno of the first day-variant and the package name.
func MageyPackID(baseRecNo int64, packageName string) string {
	return fmt.Sprintf("%d_%s", baseRecNo, NormalizePackageName(packageName))
}
