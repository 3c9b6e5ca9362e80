package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/jbaptiste/cardfolio-backend/pkg/errors"
)

func TestResolvePeriodDefaultsToAll(t *testing.T) {
	period, err := ResolvePeriod(PeriodQuery{})
	require.NoError(t, err)
	assert.Equal(t, periodAll, period.Type)
	assert.True(t, period.Unbounded())
}

func TestResolvePeriodYear(t *testing.T) {
	period, err := ResolvePeriod(PeriodQuery{Type: "year", Year: 2025})
	require.NoError(t, err)

	assert.True(t, period.Contains(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolvePeriodMonth(t *testing.T) {
	period, err := ResolvePeriod(PeriodQuery{Type: "month", Year: 2025, Month: 2})
	require.NoError(t, err)

	assert.True(t, period.Contains(time.Date(2025, time.February, 28, 23, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolvePeriodWeekIsFixedSevenDayBlock(t *testing.T) {
	// Week 2 of March spans the 8th through the 14th regardless of weekday.
	period, err := ResolvePeriod(PeriodQuery{Type: "week", Year: 2025, Month: 3, Week: 2})
	require.NoError(t, err)

	assert.True(t, period.Contains(time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2025, time.March, 14, 23, 59, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, time.March, 7, 23, 59, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)))
}

func TestResolvePeriodExplicitDatesWin(t *testing.T) {
	period, err := ResolvePeriod(PeriodQuery{
		Type: "year", Year: 2020,
		StartDate: "2025-01-10",
		EndDate:   "2025-01-20",
	})
	require.NoError(t, err)

	assert.True(t, period.Contains(time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, period.Contains(time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, period.Contains(time.Date(2025, time.January, 20, 23, 0, 0, 0, time.UTC)), "end date is inclusive")
}

func TestResolvePeriodValidation(t *testing.T) {
	cases := []PeriodQuery{
		{Type: "year"},
		{Type: "month", Year: 2025, Month: 13},
		{Type: "week", Year: 2025, Month: 3, Week: 0},
		{Type: "fortnight", Year: 2025},
		{StartDate: "10/01/2025"},
		{StartDate: "2025-02-10", EndDate: "2025-01-10"},
	}
	for _, query := range cases {
		_, err := ResolvePeriod(query)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "query %+v", query)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}
