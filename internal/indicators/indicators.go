// Package indicators computes watchlist metrics from bar series.
package indicators

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/watchlist/internal/contracts"
)

// Volume surge defaults
const (
	DefaultSurgeWindow = 6
	DefaultSurgeFactor = 2.0
)

// PivotLevels are classic floor-trader pivots from one bar
type PivotLevels struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
}

// VWAP returns the volume-weighted typical price, (H+L+C)/3.
// Returns 0 for an empty series or zero total volume.
func VWAP(bars []contracts.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}

	typical := make([]float64, len(bars))
	weights := make([]float64, len(bars))
	var total float64
	for i, b := range bars {
		typical[i] = (b.High + b.Low + b.Close) / 3
		weights[i] = float64(b.Volume)
		total += weights[i]
	}
	if total == 0 {
		return 0
	}

	return stat.Mean(typical, weights)
}

// Pivots computes levels from the last bar; all zero when empty
func Pivots(bars []contracts.Bar) PivotLevels {
	if len(bars) == 0 {
		return PivotLevels{}
	}

	last := bars[len(bars)-1]
	p := (last.High + last.Low + last.Close) / 3
	rng := last.High - last.Low

	return PivotLevels{
		Pivot: p,
		R1:    2*p - last.Low,
		R2:    p + rng,
		S1:    2*p - last.High,
		S2:    p - rng,
	}
}

// VolumeSurge reports whether the latest volume exceeds factor times the
// simple average of the window bars ending just before it.
// Returns false with fewer than window+1 bars.
func VolumeSurge(bars []contracts.Bar, window int, factor float64) bool {
	if window < 1 || len(bars) < window+1 {
		return false
	}

	volumes := make([]float64, len(bars))
	for i, b := range bars {
		volumes[i] = float64(b.Volume)
	}

	var avg float64
	if window == 1 {
		avg = volumes[len(volumes)-2]
	} else {
		sma := talib.Sma(volumes, window)
		avg = sma[len(sma)-2]
	}
	if math.IsNaN(avg) {
		return false
	}

	return volumes[len(volumes)-1] > factor*avg
}

// Round2 rounds to two decimals for display
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
