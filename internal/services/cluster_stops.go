package services

import (
	"daylog-service/internal/domain"
	"fmt"
	"math"
)

// ClusterOptions tunes stop detection over a raw GPS track.
type ClusterOptions struct {
	// Samples strictly below this speed count as stationary. Missing speed counts as 0.
	SpeedThreshold float64
	// Clusters shorter than this many minutes are dropped. The bound is inclusive.
	MinDurationMinutes float64
	// Clusters need strictly more than this many samples.
	MinPointsExclusive int
	// The first DeliveryQuota qualifying stops are deliveries; the rest are breaks.
	DeliveryQuota int
	// Emit a cluster that is still open when the track ends. Off by default: a track
	// that ends while the driver is parked reports no final stop.
	FlushOpenCluster bool
}

func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		SpeedThreshold:     5,
		MinDurationMinutes: 3,
		MinPointsExclusive: 2,
		DeliveryQuota:      8,
	}
}

// ClusterStops derives stops from a time-ordered GPS track in a single forward pass.
//
// A stop is a maximal run of consecutive stationary samples that has more than
// MinPointsExclusive samples and spans at least MinDurationMinutes from its first to
// its last sample. Its position is the mean of the run's coordinates and its duration
// is rounded to whole minutes. Stops never overlap since runs are disjoint.
func ClusterStops(track []domain.GPSPoint, opts ClusterOptions) []domain.Stop {
	stops := make([]domain.Stop, 0)
	var cluster []domain.GPSPoint

	emit := func() {
		if len(cluster) <= opts.MinPointsExclusive {
			return
		}

		first := cluster[0]
		last := cluster[len(cluster)-1]
		minutes := last.Timestamp.Sub(first.Timestamp).Minutes()
		if minutes < opts.MinDurationMinutes {
			return
		}

		var sumLat, sumLng float64
		for _, p := range cluster {
			sumLat += p.Lat
			sumLng += p.Lng
		}
		n := float64(len(cluster))

		stopType := domain.StopBreak
		if len(stops) < opts.DeliveryQuota {
			stopType = domain.StopDelivery
		}

		stops = append(stops, domain.Stop{
			ID:            fmt.Sprintf("stop-%d", len(stops)+1),
			Lat:           sumLat / n,
			Lng:           sumLng / n,
			ArrivalTime:   first.Timestamp,
			DepartureTime: last.Timestamp,
			Duration:      int(math.Round(minutes)),
			Type:          stopType,
		})
	}

	for _, p := range track {
		if p.SpeedOrZero() < opts.SpeedThreshold {
			cluster = append(cluster, p)
			continue
		}

		if len(cluster) > 0 {
			emit()
			cluster = nil
		}
	}

	if opts.FlushOpenCluster && len(cluster) > 0 {
		emit()
	}

	return stops
}
