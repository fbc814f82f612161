package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	p := NewPricer(DefaultLoyaltyPolicy())
	rate := decimal.RequireFromString("10.00")

	tests := []struct {
		name       string
		start, end time.Time
		points     int
		wantTotal  string
		wantDebit  int
	}{
		{"two hours no points", at(10, 0), at(12, 0), 40, "20", 0},
		{"two hours redeemed", at(10, 0), at(12, 0), 60, "0", 50},
		{"exactly 50 points", at(10, 0), at(12, 0), 50, "0", 50},
		{"three hours redeemed", at(10, 0), at(13, 0), 75, "10", 50},
		{"too short to redeem", at(10, 0), at(11, 30), 500, "15", 0},
		{"fractional billing", at(10, 0), at(10, 20), 0, "3.33", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := p.Quote(rate, tt.start, tt.end, tt.points)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(q.TotalPrice), "total %s", q.TotalPrice)
			assert.Equal(t, tt.wantDebit, q.PointsToDebit)
		})
	}
}

func TestQuoteFreeHoursCappedByDuration(t *testing.T) {
	p := NewPricer(LoyaltyPolicy{RedemptionCost: 50, FreeHours: 3 * time.Hour, MinRedeemDuration: 2 * time.Hour})
	q, err := p.Quote(decimal.NewFromInt(8), at(10, 0), at(12, 0), 50)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, q.FreeDuration)
	assert.True(t, q.TotalPrice.IsZero())
}

func TestQuoteRejectsEmptyInterval(t *testing.T) {
	p := NewPricer(DefaultLoyaltyPolicy())
	_, err := p.Quote(decimal.NewFromInt(5), at(10, 0), at(10, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, err = p.Quote(decimal.NewFromInt(5), at(11, 0), at(10, 0), 0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestAward(t *testing.T) {
	p := NewPricer(DefaultLoyaltyPolicy())
	assert.Equal(t, 10, p.Award(2*time.Hour))
	assert.Equal(t, 10, p.Award(5*time.Hour))
	assert.Equal(t, 0, p.Award(114*time.Minute)) // 1.9h
}

func TestHours(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.9").Equal(Hours(114*time.Minute)))
	assert.True(t, decimal.NewFromInt(2).Equal(Hours(2*time.Hour)))
}

func TestQuoteKeepsSubSecondTime(t *testing.T) {
	p := NewPricer(DefaultLoyaltyPolicy())
	rate := decimal.NewFromInt(3600)
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	q, err := p.Quote(rate, start, start.Add(1500*time.Millisecond), 0)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.5").Equal(q.TotalPrice), q.TotalPrice.String())
	assert.True(t, q.TotalPrice.Equal(rate.Mul(q.BillableHours).Round(2)))

	q, err = p.Quote(rate, start, start.Add(500*time.Millisecond), 0)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.5").Equal(q.TotalPrice), q.TotalPrice.String())
}
