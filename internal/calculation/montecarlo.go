package calculation

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/rpgo/bizplan/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBins is the number of equal-width buckets in a Monte Carlo summary.
const HistogramBins = 20

// MonteCarloSimulator reruns the projection with revenue, growth, COGS and
// staff cost jointly perturbed and summarises the valuation distribution.
type MonteCarloSimulator struct {
	Engine   *ProjectionEngine
	Settings domain.MonteCarloSettings
	Logger   Logger
}

// NewMonteCarloSimulator creates a simulator. Unset settings take their
// defaults and a zero seed is replaced from the seed provider.
func NewMonteCarloSimulator(engine *ProjectionEngine, settings domain.MonteCarloSettings) *MonteCarloSimulator {
	if engine == nil {
		engine = NewProjectionEngine()
	}
	settings = settings.WithDefaults()
	if settings.Seed == 0 {
		settings.Seed = seedFunc()
	}
	return &MonteCarloSimulator{
		Engine:   engine,
		Settings: settings,
		Logger:   NopLogger{},
	}
}

// SetLogger sets the logger for the simulator. If nil is provided, a no-op logger is used.
func (mcs *MonteCarloSimulator) SetLogger(l Logger) {
	if l == nil {
		mcs.Logger = NopLogger{}
		return
	}
	mcs.Logger = l
}

// variability holds the four noise standard deviations as floats.
type variability struct {
	revenue, growth, cogs, staff float64
}

func (mcs *MonteCarloSimulator) variability() variability {
	s := mcs.Settings
	return variability{
		revenue: s.RevenueVariability.Decimal.InexactFloat64(),
		growth:  s.GrowthVariability.Decimal.InexactFloat64(),
		cogs:    s.COGSVariability.Decimal.InexactFloat64(),
		staff:   s.StaffVariability.Decimal.InexactFloat64(),
	}
}

// Simulate runs Settings.Draws perturbed projections of a on a bounded
// worker pool. Worker w owns a random stream seeded with Seed+w and handles
// draws w, w+workers, w+2*workers, ..., so results depend only on the seed
// and worker count. Cancelling ctx stops the pool and returns ctx.Err().
func (mcs *MonteCarloSimulator) Simulate(ctx context.Context, a domain.Assumptions) (*domain.MonteCarloSummary, error) {
	draws := mcs.Settings.Draws
	workers := mcs.Settings.Workers
	if workers > draws {
		workers = draws
	}
	startTime := nowFunc()
	vary := mcs.variability()
	metric := mcs.Engine.metric()

	results := make([]float64, draws)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			src := NewSeededSource(mcs.Settings.Seed + int64(worker))
			for i := worker; i < draws; i += workers {
				if ctx.Err() != nil {
					return
				}
				perturbed := perturbAssumptions(a, src, vary)
				results[i] = metric.Value(mcs.Engine.Project(perturbed)).InexactFloat64()
			}
		}(w)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		mcs.Logger.Warnf("monte carlo cancelled: %v", err)
		return nil, err
	}

	summary := summarizeDraws(results)
	summary.Metric = metric.Name
	summary.Seed = mcs.Settings.Seed
	mcs.Logger.Debugf("monte carlo: %d draws on %d workers (seed %d) in %s", draws, workers, mcs.Settings.Seed, nowFunc().Sub(startTime))
	return summary, nil
}

// perturbAssumptions returns a copy of a with revenue seed, growth, COGS %
// and staff cost each multiplied by 1 + N(0, sd), drawn in that order.
func perturbAssumptions(a domain.Assumptions, src RandomSource, vary variability) domain.Assumptions {
	revenue := noiseFactor(src, vary.revenue)
	growth := noiseFactor(src, vary.growth)
	cogs := noiseFactor(src, vary.cogs)
	staff := noiseFactor(src, vary.staff)

	return a.WithOverrides(func(x *domain.Assumptions) {
		x.InitialRevenue = x.InitialRevenue.Mul(revenue)
		x.GrowthRate = x.GrowthRate.Mul(growth)
		x.COGSPct = x.COGSPct.Mul(cogs)
		x.StaffCost = x.StaffCost.Mul(staff)
	})
}

func noiseFactor(src RandomSource, sd float64) decimal.Decimal {
	return decimal.NewFromFloat(1 + NormalDeviate(src, 0, sd))
}

// summarizeDraws sorts values in place and builds percentiles, moments and
// the histogram.
func summarizeDraws(values []float64) *domain.MonteCarloSummary {
	n := len(values)
	summary := &domain.MonteCarloSummary{Draws: n}
	if n == 0 {
		return summary
	}
	sort.Float64s(values)

	summary.Percentiles = domain.PercentileRanges{
		P5:  decimal.NewFromFloat(percentile(values, 0.05)),
		P50: decimal.NewFromFloat(percentile(values, 0.50)),
		P95: decimal.NewFromFloat(percentile(values, 0.95)),
	}
	summary.Min = decimal.NewFromFloat(values[0])
	summary.Max = decimal.NewFromFloat(values[n-1])

	mean, std := stat.MeanStdDev(values, nil)
	summary.Mean = finiteDecimal(mean)
	summary.StdDev = finiteDecimal(std)

	losses := sort.SearchFloat64s(values, 0)
	summary.ProbabilityLoss = decimal.NewFromInt(int64(losses)).Div(decimal.NewFromInt(int64(n)))

	summary.Histogram = histogram(values, HistogramBins)
	return summary
}

// percentile returns sorted[floor(n*p)], clamped to the last element.
func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// histogram counts sorted values into equal-width bins spanning min to max.
// When every value is equal all of them land in the first bin.
func histogram(sorted []float64, bins int) []domain.HistogramBin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	out := make([]domain.HistogramBin, bins)

	if lo == hi {
		for i := range out {
			out[i] = domain.HistogramBin{Lower: decimal.NewFromFloat(lo), Upper: decimal.NewFromFloat(hi)}
		}
		out[0].Count = len(sorted)
		return out
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram treats the last divider as exclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	for i := range out {
		upper := dividers[i+1]
		if i == bins-1 {
			upper = hi
		}
		out[i] = domain.HistogramBin{
			Lower: decimal.NewFromFloat(dividers[i]),
			Upper: decimal.NewFromFloat(upper),
			Count: int(counts[i]),
		}
	}
	return out
}
