package analytics

import (
	"math"
	"sort"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

// NoSignalMessage is reported when there is nothing to analyze.
const NoSignalMessage = "no signal data available"

// AnalyzeSignals summarizes signal strengths as absolute dBm magnitudes, so
// larger values mean weaker signals.
func AnalyzeSignals(aps []domain.AccessPoint) domain.SignalReport {
	if len(aps) == 0 {
		return domain.SignalReport{NoData: true, Message: NoSignalMessage}
	}

	values := make([]int, len(aps))
	sum := 0
	for i, ap := range aps {
		values[i] = abs(ap.Signal)
		sum += values[i]
	}
	sort.Ints(values)

	n := len(values)
	mean := float64(sum) / float64(n)
	report := domain.SignalReport{
		Samples: n,
		Mean:    round1(mean),
		Median:  round1(median(values)),
		Min:     values[0],
		Max:     values[n-1],
		Quality: signalBucket(mean),
	}

	if n >= 2 {
		var sq float64
		for _, v := range values {
			d := float64(v) - mean
			sq += d * d
		}
		sd := round1(math.Sqrt(sq / float64(n-1)))
		report.StdDev = &sd
	}

	for _, v := range values {
		switch signalBucket(float64(v)) {
		case "excellent":
			report.Distribution.Excellent++
		case "good":
			report.Distribution.Good++
		case "fair":
			report.Distribution.Fair++
		default:
			report.Distribution.Poor++
		}
	}
	return report
}

// values must be sorted.
func median(values []int) float64 {
	n := len(values)
	if n%2 == 1 {
		return float64(values[n/2])
	}
	return float64(values[n/2-1]+values[n/2]) / 2
}

func signalBucket(magnitude float64) string {
	switch {
	case magnitude < 50:
		return "excellent"
	case magnitude < 70:
		return "good"
	case magnitude < 85:
		return "fair"
	}
	return "poor"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
