package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestComputeTotalNoCoupons(t *testing.T) {
	totals, err := ComputeTotal([]Line{
		{UnitPrice: dec("100"), Quantity: 2},
		{UnitPrice: dec("14.50"), Quantity: 3},
	}, nil)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("243.50")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Total.Equal(dec("243.50")), "total %s", totals.Total)
}

func TestComputeTotalEmptyLines(t *testing.T) {
	totals, err := ComputeTotal(nil, nil)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestComputeTotalAmountCoupon(t *testing.T) {
	totals, err := ComputeTotal(
		[]Line{{UnitPrice: dec("100"), Quantity: 2}},
		[]Discount{{Type: model.CouponAmount, Value: dec("30")}},
	)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("200")))
	assert.True(t, totals.Total.Equal(dec("170")))
}

func TestComputeTotalPercentageCoupon(t *testing.T) {
	totals, err := ComputeTotal(
		[]Line{{UnitPrice: dec("100"), Quantity: 2}},
		[]Discount{{Type: model.CouponPercentage, Value: dec("10")}},
	)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("200")))
	assert.True(t, totals.Total.Equal(dec("180")))
}

// Multiple percentage coupons must each discount the original subtotal,
// never the running total: 200 - 20 - 20 = 160, not 200*0.9*0.9 = 162.
func TestComputeTotalPercentageCouponsDoNotCompound(t *testing.T) {
	totals, err := ComputeTotal(
		[]Line{{UnitPrice: dec("100"), Quantity: 2}},
		[]Discount{
			{Type: model.CouponPercentage, Value: dec("10")},
			{Type: model.CouponPercentage, Value: dec("10")},
		},
	)

	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(dec("160")), "total %s", totals.Total)
}

func TestComputeTotalClampsAtZero(t *testing.T) {
	totals, err := ComputeTotal(
		[]Line{{UnitPrice: dec("100"), Quantity: 1}},
		[]Discount{
			{Type: model.CouponAmount, Value: dec("50")},
			{Type: model.CouponAmount, Value: dec("70")},
		},
	)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("100")))
	assert.True(t, totals.Total.IsZero(), "total %s", totals.Total)
}

// Percentage discounts are computed off the original subtotal, so mixing
// them with amount coupons in either order gives the same total.
func TestComputeTotalOrderIndependence(t *testing.T) {
	lines := []Line{{UnitPrice: dec("100"), Quantity: 2}}
	amountFirst := []Discount{
		{Type: model.CouponAmount, Value: dec("30")},
		{Type: model.CouponPercentage, Value: dec("10")},
	}
	percentageFirst := []Discount{
		{Type: model.CouponPercentage, Value: dec("10")},
		{Type: model.CouponAmount, Value: dec("30")},
	}

	a, err := ComputeTotal(lines, amountFirst)
	require.NoError(t, err)
	b, err := ComputeTotal(lines, percentageFirst)
	require.NoError(t, err)

	assert.True(t, a.Total.Equal(b.Total), "amount-first %s vs percentage-first %s", a.Total, b.Total)
	assert.True(t, a.Total.Equal(dec("150")))
}

func TestComputeTotalDeterministic(t *testing.T) {
	lines := []Line{
		{UnitPrice: dec("19.99"), Quantity: 3},
		{UnitPrice: dec("5.25"), Quantity: 7},
	}
	coupons := []Discount{
		{Type: model.CouponPercentage, Value: dec("12.5")},
		{Type: model.CouponAmount, Value: dec("4")},
	}

	first, err := ComputeTotal(lines, coupons)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := ComputeTotal(lines, coupons)
		require.NoError(t, err)
		assert.True(t, first.Subtotal.Equal(again.Subtotal))
		assert.True(t, first.Total.Equal(again.Total))
	}
}

func TestComputeTotalInvalidCouponType(t *testing.T) {
	_, err := ComputeTotal(
		[]Line{{UnitPrice: dec("100"), Quantity: 1}},
		[]Discount{{Type: model.CouponType("BOGOF"), Value: dec("1")}},
	)

	var invalid *InvalidCouponTypeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.CouponType("BOGOF"), invalid.Type)
}
