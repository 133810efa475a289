package aggregator

import (
	"sort"

	"github.com/iulianpascalau/model-stats-monitor/services/stats/common"
)

const (
	shortWindow = 7
	longWindow  = 30
)

// Aggregate derives the latest, peak and rolling average figures of one model from its observations.
// Observations are ordered by date descending; rows sharing a date keep their extraction order, so the first
// extracted one is considered the latest. It returns false if there are no observations.
// The ScrapedAt field is left for the caller to fill.
func Aggregate(observations []common.RawObservation) (common.AggregatedMetric, bool) {
	if len(observations) == 0 {
		return common.AggregatedMetric{}, false
	}

	sorted := make([]common.RawObservation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	latest := sorted[0]
	peak := latest.Throughput
	for _, obs := range sorted[1:] {
		if obs.Throughput > peak {
			peak = obs.Throughput
		}
	}

	return common.AggregatedMetric{
		EntityID:           latest.EntityID,
		Name:               latest.DisplayName,
		LatestThroughput:   latest.Throughput,
		LatestTTFT:         latest.TimeToFirstToken,
		LatestRequestCount: latest.RequestCount,
		AvgThroughput7:     meanThroughput(sorted, shortWindow),
		AvgThroughput30:    meanThroughput(sorted, longWindow),
		PeakThroughput:     peak,
		LatestDate:         latest.Date,
	}, true
}

// ZeroMetric returns the record stored for a catalogue model that has no observations
func ZeroMetric(entry common.CatalogueEntry) common.AggregatedMetric {
	return common.AggregatedMetric{
		EntityID: entry.ID,
		Name:     entry.DisplayName,
	}
}

// ForEntry aggregates the observations of a catalogue model, falling back to ZeroMetric when there are none.
// The catalogue ID always wins and the catalogue name is used when the observations carry none.
func ForEntry(entry common.CatalogueEntry, observations []common.RawObservation) common.AggregatedMetric {
	metric, ok := Aggregate(observations)
	if !ok {
		return ZeroMetric(entry)
	}

	metric.EntityID = entry.ID
	if len(metric.Name) == 0 {
		metric.Name = entry.DisplayName
	}

	return metric
}

func meanThroughput(sorted []common.RawObservation, window int) float64 {
	if len(sorted) < window {
		window = len(sorted)
	}
	if window == 0 {
		return 0
	}

	sum := 0.0
	for _, obs := range sorted[:window] {
		sum += obs.Throughput
	}

	return sum / float64(window)
}
