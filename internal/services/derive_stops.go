package services

import (
	"daylog-service/internal/domain"
	"fmt"
)

// DeriveFromJobs turns job-history rows into one Stop and one Delivery per row.
//
// Rows keep their input order; nothing is merged, deduplicated or reordered, so
// adjacent events at the same location stay separate stops. Arrival and departure
// both equal the job timestamp. Empty input yields empty (non-nil) slices.
func DeriveFromJobs(jobs []domain.JobEvent) ([]domain.Stop, []domain.Delivery) {
	stops := make([]domain.Stop, 0, len(jobs))
	deliveries := make([]domain.Delivery, 0, len(jobs))

	for i, job := range jobs {
		stopType := domain.StopDelivered
		status := domain.DeliveryDelivered
		if job.Status == domain.JobStatusInTransit {
			stopType = domain.StopPickup
			status = domain.DeliveryPickup
		}

		stopID := fmt.Sprintf("stop-%d-%d", job.JobID, i)
		stops = append(stops, domain.Stop{
			ID:            stopID,
			Lat:           job.Latitude,
			Lng:           job.Longitude,
			ArrivalTime:   job.JobDatetime,
			DepartureTime: job.JobDatetime,
			Duration:      0,
			Type:          stopType,
		})

		jobID := job.JobID
		completedAt := job.JobDatetime
		deliveries = append(deliveries, domain.Delivery{
			ID:          fmt.Sprintf("delivery-%d-%d", job.JobID, i),
			StopID:      stopID,
			JobID:       &jobID,
			Status:      status,
			CompletedAt: &completedAt,
			JobDetails:  jobDetails(job.Extra),
		})
	}

	return stops, deliveries
}

// jobDetails folds the joined columns into a JobDetails bag, dropping nulls.
// It returns nil when nothing is left so the field is omitted from JSON.
func jobDetails(extra map[string]any) domain.JobDetails {
	if len(extra) == 0 {
		return nil
	}

	d := make(domain.JobDetails, len(extra))
	for k, v := range extra {
		d.Set(k, v)
	}
	if len(d) == 0 {
		return nil
	}
	return d
}
