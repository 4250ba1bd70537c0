package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lcalzada-xor/airsight/internal/core/domain"
)

const optimalChannelCount = 5

// Congestion levels by mean networks per occupied channel.
const (
	CongestionNone     = "none"
	CongestionLow      = "low"
	CongestionModerate = "moderate"
	CongestionHigh     = "high"
	CongestionSevere   = "severe"
)

// AnalyzeChannels estimates interference per occupied channel. Access
// points with channel 0 are ignored.
func AnalyzeChannels(aps []domain.AccessPoint) domain.ChannelReport {
	type acc struct {
		count       int
		totalSignal int
	}
	byChannel := make(map[int]*acc)
	for _, ap := range aps {
		if ap.Channel == 0 {
			continue
		}
		a, ok := byChannel[ap.Channel]
		if !ok {
			a = &acc{}
			byChannel[ap.Channel] = a
		}
		a.count++
		a.totalSignal += abs(ap.Signal)
	}

	report := domain.ChannelReport{
		Utilization:     make(map[int]int, len(byChannel)),
		Ranked:          make([]domain.ChannelScore, 0, len(byChannel)),
		Optimal:         []domain.ChannelScore{},
		Recommendations: []string{},
	}
	for ch, a := range byChannel {
		report.Utilization[ch] = a.count
		score := math.Min(100, float64(a.count*10)+float64(a.totalSignal)/10)
		report.Ranked = append(report.Ranked, domain.ChannelScore{
			Channel:           ch,
			NetworkCount:      a.count,
			InterferenceScore: score,
			Quality:           channelQuality(score),
		})
	}
	sort.Slice(report.Ranked, func(i, j int) bool {
		if report.Ranked[i].InterferenceScore != report.Ranked[j].InterferenceScore {
			return report.Ranked[i].InterferenceScore < report.Ranked[j].InterferenceScore
		}
		return report.Ranked[i].Channel < report.Ranked[j].Channel
	})

	n := min(optimalChannelCount, len(report.Ranked))
	report.Optimal = append(report.Optimal, report.Ranked[:n]...)
	report.Congestion = congestionLevel(report.Utilization)

	if report.Congestion == CongestionHigh || report.Congestion == CongestionSevere {
		report.Recommendations = append(report.Recommendations, "Consider using less congested channels")
		if len(report.Optimal) > 0 {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Channel %d shows optimal performance", report.Optimal[0].Channel))
		}
	}
	return report
}

func channelQuality(score float64) string {
	switch {
	case score < 20:
		return "excellent"
	case score < 50:
		return "good"
	}
	return "poor"
}

func congestionLevel(utilization map[int]int) string {
	if len(utilization) == 0 {
		return CongestionNone
	}
	total := 0
	for _, n := range utilization {
		total += n
	}
	mean := float64(total) / float64(len(utilization))
	switch {
	case mean < 2:
		return CongestionLow
	case mean < 5:
		return CongestionModerate
	case mean < 10:
		return CongestionHigh
	}
	return CongestionSevere
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
