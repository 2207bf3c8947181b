package calculation

import (
	"testing"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/stretchr/testify/assert"
)

func periodsWith(ebitda, fcf []float64) []domain.PeriodRecord {
	out := make([]domain.PeriodRecord, len(ebitda))
	for i := range ebitda {
		out[i] = domain.PeriodRecord{Period: i + 1, EBITDA: d(ebitda[i]), FreeCashFlow: d(fcf[i])}
	}
	return out
}

func TestBreakEvenPeriod(t *testing.T) {
	tests := []struct {
		name   string
		ebitda []float64
		want   int
	}{
		{name: "profitable from start", ebitda: []float64{10, 20}, want: 1},
		{name: "exactly zero counts", ebitda: []float64{-10, 0, 5}, want: 2},
		{name: "later", ebitda: []float64{-10, -5, 1}, want: 3},
		{name: "never", ebitda: []float64{-10, -5, -1}, want: 0},
		{name: "empty", ebitda: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			periods := periodsWith(tt.ebitda, make([]float64, len(tt.ebitda)))
			assert.Equal(t, tt.want, BreakEvenPeriod(periods))
		})
	}
}

func TestPaybackPeriod(t *testing.T) {
	fcf := []float64{-100, 400, 400, 400}
	periods := periodsWith(make([]float64, len(fcf)), fcf)

	assert.Equal(t, 3, PaybackPeriod(d(600), periods))
	assert.Equal(t, 2, PaybackPeriod(d(300), periods))
	assert.Equal(t, 0, PaybackPeriod(d(5000), periods))
	assert.Equal(t, 2, PaybackPeriod(d(0), periods))

	cumulative := CumulativeCashFlow(d(600), periods)
	assert.Len(t, cumulative, 4)
	assert.True(t, cumulative[0].Equal(d(-700)))
	assert.True(t, cumulative[3].Equal(d(500)))
}
