package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, lima)

	tests := []struct {
		name     string
		query    PeriodQuery
		from, to time.Time
	}{
		{"exact date", PeriodQuery{Date: "2024-03-01"}, time.Date(2024, 3, 1, 0, 0, 0, 0, lima), time.Date(2024, 3, 2, 0, 0, 0, 0, lima)},
		{"date wins over month", PeriodQuery{Date: "2024-03-01", Month: "7"}, time.Date(2024, 3, 1, 0, 0, 0, 0, lima), time.Date(2024, 3, 2, 0, 0, 0, 0, lima)},
		{"month and year", PeriodQuery{Month: "12", Year: "2023"}, time.Date(2023, 12, 1, 0, 0, 0, 0, lima), time.Date(2024, 1, 1, 0, 0, 0, 0, lima)},
		{"month defaults to current year", PeriodQuery{Month: "08"}, time.Date(2024, 8, 1, 0, 0, 0, 0, lima), time.Date(2024, 9, 1, 0, 0, 0, 0, lima)},
		{"year only", PeriodQuery{Year: "2023"}, time.Date(2023, 1, 1, 0, 0, 0, 0, lima), time.Date(2024, 1, 1, 0, 0, 0, 0, lima)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePeriod(tt.query, lima, now)
			require.NoError(t, err)
			require.NotNil(t, p.From)
			require.NotNil(t, p.To)
			assert.True(t, tt.from.Equal(*p.From), p.From.String())
			assert.True(t, tt.to.Equal(*p.To), p.To.String())
		})
	}

	t.Run("no filter", func(t *testing.T) {
		p, err := ParsePeriod(PeriodQuery{}, lima, now)
		require.NoError(t, err)
		assert.True(t, p.IsZero())
	})

	for _, q := range []PeriodQuery{{Date: "01/03/2024"}, {Month: "13"}, {Month: "0"}, {Month: "abc"}, {Month: "1", Year: "dos mil"}} {
		_, err := ParsePeriod(q, lima, now)
		assert.True(t, IsValidation(err), "%+v", q)
	}
}
