// models/counters.go
package models

import "time"

const GlobalStatsID = "global_stats"

// Counter names a column of the global counters row.
type Counter string

const (
	CounterItemsAvailable Counter = "items_available"
	CounterItemsDonated   Counter = "items_donated"
	CounterTotalDonors    Counter = "total_donors"
)

// GlobalStats is the single advisory aggregate row. It may drift from the
// item table; Reconcile rebuilds it.
type GlobalStats struct {
	ID             string    `gorm:"size:40;primaryKey" json:"-"`
	ItemsAvailable int64     `gorm:"not null;default:0" json:"itemsAvailable"`
	ItemsDonated   int64     `gorm:"not null;default:0" json:"itemsDonated"`
	TotalDonors    int64     `gorm:"not null;default:0" json:"totalDonors"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (GlobalStats) TableName() string { return CounterTable }

// PlatformStats is the public derived view of GlobalStats.
type PlatformStats struct {
	TotalItems     int64 `json:"totalItems"`
	ItemsDonated   int64 `json:"itemsDonated"`
	ItemsAvailable int64 `json:"itemsAvailable"`
	TotalDonors    int64 `json:"totalDonors"`
	FamiliesHelped int64 `json:"familiesHelped"`
	Cities         int64 `json:"cities"`
}
