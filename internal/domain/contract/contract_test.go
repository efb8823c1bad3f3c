package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestTotalAmountFor(t *testing.T) {
	tests := []struct {
		name     string
		annual   string
		vat      string
		years    int
		expected string
	}{
		{name: "standard vat", annual: "100000", vat: "15", years: 3, expected: "345000"},
		{name: "zero vat", annual: "100000", vat: "0", years: 2, expected: "200000"},
		{name: "one year", annual: "50000", vat: "15", years: 1, expected: "57500"},
		{name: "fractional vat", annual: "80000", vat: "7.5", years: 2, expected: "172000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := TotalAmountFor(d(tt.annual), d(tt.vat), tt.years)
			assert.True(t, d(tt.expected).Equal(total), "expected %s, got %s", tt.expected, total)
		})
	}
}

func TestNew(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	c := New("CTR-001", uuid.New(), uuid.New(), "investor@example.com",
		d("100000"), d("15"), 3, start, 12, FrequencyQuarterly, now)

	require.NotNil(t, c)
	assert.Equal(t, StatusDraft, c.Status)
	assert.True(t, d("345000").Equal(c.TotalAmount))
	assert.Equal(t, start.AddDate(3, 0, 0), c.EndDate)
	assert.Equal(t, 12, c.InstallmentCount)
	assert.Equal(t, FrequencyQuarterly, c.InstallmentFrequency)
	assert.Empty(t, c.PendingEvents())
}

func TestFrequency_Months(t *testing.T) {
	assert.Equal(t, 1, FrequencyMonthly.Months())
	assert.Equal(t, 3, FrequencyQuarterly.Months())
	assert.Equal(t, 6, FrequencySemiAnnual.Months())
	assert.Equal(t, 12, FrequencyAnnual.Months())
	assert.Equal(t, 1, Frequency("").Months())
}

func TestContract_ApplyStatus(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("activate", func(t *testing.T) {
		c := New("CTR-001", uuid.New(), uuid.New(), "investor@example.com",
			d("100000"), d("15"), 1, start, 0, FrequencyMonthly, now)

		require.NoError(t, c.ApplyStatus(StatusActive, "", now))

		assert.Equal(t, StatusActive, c.Status)
		events := c.PendingEvents()
		require.Len(t, events, 1)
		assert.Equal(t, event.KindContractActivated, events[0].Kind)
	})

	t.Run("cancel records justification", func(t *testing.T) {
		c := New("CTR-001", uuid.New(), uuid.New(), "investor@example.com",
			d("100000"), d("15"), 1, start, 0, FrequencyMonthly, now)
		require.NoError(t, c.ApplyStatus(StatusActive, "", now))
		c.ClearEvents()

		require.NoError(t, c.ApplyStatus(StatusCancelled, "investor insolvency", now))

		assert.Equal(t, "investor insolvency", c.CancellationJustification)
		require.NotNil(t, c.CancelledAt)
		events := c.PendingEvents()
		require.Len(t, events, 1)
		assert.Equal(t, event.KindContractCancelled, events[0].Kind)
	})

	t.Run("terms never change on transition", func(t *testing.T) {
		c := New("CTR-001", uuid.New(), uuid.New(), "investor@example.com",
			d("100000"), d("15"), 2, start, 0, FrequencyMonthly, now)
		total := c.TotalAmount

		require.NoError(t, c.ApplyStatus(StatusActive, "", now))
		require.NoError(t, c.ApplyStatus(StatusExpiring, "", now))
		require.NoError(t, c.ApplyStatus(StatusExpired, "", now))

		assert.True(t, total.Equal(c.TotalAmount))
		assert.Equal(t, start.AddDate(2, 0, 0), c.EndDate)
	})

	t.Run("invalid status", func(t *testing.T) {
		c := New("CTR-001", uuid.New(), uuid.New(), "investor@example.com",
			d("100000"), d("15"), 1, start, 0, FrequencyMonthly, now)

		err := c.ApplyStatus(Status("SUSPENDED"), "", now)
		assert.ErrorIs(t, err, ErrInvalidStatus)
		assert.Equal(t, StatusDraft, c.Status)
	})
}
