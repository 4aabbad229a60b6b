package domain

import (
	"sort"
	"time"
)

// DeliveryStatus is the business outcome recorded for a stop.
type DeliveryStatus string

const (
	DeliveryCompleted DeliveryStatus = "completed"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryPickup    DeliveryStatus = "pickup"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Keys of JobDetails that clients know how to display.
const (
	JobDetailCustomerName = "customer_name"
	JobDetailAddress      = "address"
	JobDetailOrderRef     = "order_ref"
	JobDetailNotes        = "notes"
	JobDetailPackageCount = "package_count"
)

// KnownJobDetailKeys lists the display keys in presentation order.
var KnownJobDetailKeys = []string{
	JobDetailCustomerName,
	JobDetailAddress,
	JobDetailOrderRef,
	JobDetailNotes,
	JobDetailPackageCount,
}

// JobDetails carries the enrichment columns joined onto a job-history row.
// Nil values are never stored.
type JobDetails map[string]any

// Set stores v under key unless v is nil.
func (d JobDetails) Set(key string, v any) {
	if v == nil {
		return
	}
	d[key] = v
}

// Known returns the entries whose keys are in KnownJobDetailKeys, in that order.
func (d JobDetails) Known() []JobDetail {
	out := make([]JobDetail, 0, len(KnownJobDetailKeys))
	for _, k := range KnownJobDetailKeys {
		if v, ok := d[k]; ok {
			out = append(out, JobDetail{Key: k, Value: v})
		}
	}
	return out
}

// Extra returns the keys outside KnownJobDetailKeys, sorted.
func (d JobDetails) Extra() []string {
	known := make(map[string]struct{}, len(KnownJobDetailKeys))
	for _, k := range KnownJobDetailKeys {
		known[k] = struct{}{}
	}

	out := make([]string, 0)
	for k := range d {
		if _, ok := known[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

type JobDetail struct {
	Key   string
	Value any
}

// Business event associated one-to-one with a Stop of the same batch.
type Delivery struct {
	ID          string         `json:"id"`
	StopID      string         `json:"stopId"`
	JobID       *int64         `json:"jobId,omitempty"`
	Status      DeliveryStatus `json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	JobDetails  JobDetails     `json:"jobDetails,omitempty"`
}
