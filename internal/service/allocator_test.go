package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestAllocatePricesDataAbsorbsRemainder(t *testing.T) {
	p := AllocatePrices(d("500"), AllowanceQuantities{
		DataVolume: 1024,
		OnnetMin:   100,
		LocalMin:   50,
		SMS:        20,
	})

	assert.True(t, p.SMS.Equal(d("1")), "sms got %s", p.SMS)
	assert.True(t, p.Local.Equal(d("1")), "local got %s", p.Local)
	assert.True(t, p.Onnet.Equal(d("1")), "onnet got %s", p.Onnet)
	assert.True(t, p.Data.Equal(d("497")), "data got %s", p.Data)
	assert.True(t, p.Sum().Equal(d("500")))
}

func TestAllocatePricesFirstPopulatedAbsorbsWithoutData(t *testing.T) {
	// bundle=100, onnet=60, sms=50, no data: sms and onnet each take the
	// unit price, then onnet (first in the absorb order) takes the rest.
	p := AllocatePrices(d("100"), AllowanceQuantities{OnnetMin: 60, SMS: 50})

	assert.True(t, p.SMS.Equal(d("1")), "sms got %s", p.SMS)
	assert.True(t, p.Onnet.Equal(d("99")), "onnet got %s", p.Onnet)
	assert.True(t, p.Local.IsZero())
	assert.True(t, p.Data.IsZero())
	assert.True(t, p.Sum().Equal(d("100")))
}

func TestAllocatePricesLocalOnlyTakesEverything(t *testing.T) {
	p := AllocatePrices(d("25"), AllowanceQuantities{LocalMin: 10})

	assert.True(t, p.Local.Equal(d("25")))
	assert.True(t, p.Data.IsZero())
	assert.True(t, p.Onnet.IsZero())
	assert.True(t, p.SMS.IsZero())
}

func TestAllocatePricesSMSOnly(t *testing.T) {
	p := AllocatePrices(d("10"), AllowanceQuantities{SMS: 100})

	assert.True(t, p.SMS.Equal(d("10")))
	assert.True(t, p.Sum().Equal(d("10")))
}

func TestAllocatePricesZeroQuantitiesPriceAtZero(t *testing.T) {
	p := AllocatePrices(d("100"), AllowanceQuantities{})

	assert.True(t, p.Data.IsZero())
	assert.True(t, p.Onnet.IsZero())
	assert.True(t, p.Local.IsZero())
	assert.True(t, p.SMS.IsZero())
}

func TestAllocatePricesNegativeRemainderNotClamped(t *testing.T) {
	// Bundle price smaller than the number of populated voice/SMS
	// categories: data takes the negative remainder so the sum still
	// matches the bundle price.
	p := AllocatePrices(d("2"), AllowanceQuantities{
		DataVolume: 512,
		OnnetMin:   10,
		LocalMin:   10,
		SMS:        10,
	})

	assert.True(t, p.Data.Equal(d("-1")), "data got %s", p.Data)
	assert.True(t, p.Sum().Equal(d("2")))
}

func TestAllocatePricesSumProperty(t *testing.T) {
	cases := []struct {
		price string
		q     AllowanceQuantities
	}{
		{"100", AllowanceQuantities{DataVolume: 1}},
		{"100", AllowanceQuantities{OnnetMin: 1}},
		{"100", AllowanceQuantities{LocalMin: 1}},
		{"100", AllowanceQuantities{SMS: 1}},
		{"3", AllowanceQuantities{OnnetMin: 1, LocalMin: 1, SMS: 1}},
		{"999.99", AllowanceQuantities{DataVolume: 2048, SMS: 5}},
		{"49.50", AllowanceQuantities{DataVolume: 100, OnnetMin: 60, LocalMin: 30, SMS: 10}},
	}
	for _, tc := range cases {
		p := AllocatePrices(d(tc.price), tc.q)
		assert.True(t, p.Sum().Equal(d(tc.price)), "price=%s q=%+v sum=%s", tc.price, tc.q, p.Sum())
	}
}

func TestNormalizePackageName(t *testing.T) {
	cases := map[string]string{
		"5GB Booster!":      "5GB_BOOSTER",
		"Weekend Special":   "WEEKEND_SPECIAL",
		"daily  combo":      "DAILY_COMBO",
		"Mixed-Case (Promo)": "MIXEDCASE_PROMO",
		"already_snake":     "ALREADY_SNAKE",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePackageName(in), "input %q", in)
	}
}

func TestMageyPackID(t *testing.T) {
	require.Equal(t, "42_5GB_BOOSTER", MageyPackID(42, "5GB Booster!"))
	require.Equal(t, "1_X", MageyPackID(1, "x"))
}
