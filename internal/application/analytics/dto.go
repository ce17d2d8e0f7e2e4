package analytics

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// RangeRequest selects the days and store a report covers.
// A nil EndDate means today; a reversed range is swapped.
type RangeRequest struct {
	StartDate time.Time
	EndDate   *time.Time
	StoreID   *uuid.UUID
}

// DailyRecord holds the figures of one calendar day
type DailyRecord struct {
	Date      string  `json:"date"`
	Customers int64   `json:"customers"`
	Vendors   int64   `json:"vendors"`
	Devices   int64   `json:"devices"`
	Payments  float64 `json:"payments"`
}

// AnalyticsResponse is the aggregated summary of a date range
type AnalyticsResponse struct {
	StartDate      string        `json:"start_date"`
	EndDate        string        `json:"end_date"`
	TotalCustomers int64         `json:"total_customers"`
	TotalVendors   int64         `json:"total_vendors"`
	TotalDevices   int64         `json:"total_devices"`
	TotalPayments  float64       `json:"total_payments"`
	Daily          []DailyRecord `json:"daily"`
}

// Report is a rendered workbook ready to stream
type Report struct {
	Filename string
	Content  *bytes.Buffer
}

// ArchiveResponse describes a report stored in object storage
type ArchiveResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
