// models/request.go
package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRefused   RequestStatus = "refused"
	RequestCollected RequestStatus = "collected"
	RequestCancelled RequestStatus = "cancelled"
)

// Active reports whether the request still holds a claim on its item.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestApproved
}

// Terminal statuses accept no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestRefused || s == RequestCollected || s == RequestCancelled
}

// QuotaStatuses count against the monthly requester quota.
var QuotaStatuses = []RequestStatus{RequestPending, RequestApproved, RequestCollected}

// ActiveStatuses keep an item reserved.
var ActiveStatuses = []RequestStatus{RequestPending, RequestApproved}

// CollectionInfo is attached by the donor on approval.
type CollectionInfo struct {
	Address    string `gorm:"size:500" json:"address"`
	Date       string `gorm:"size:40" json:"date"`
	TimeWindow string `gorm:"size:80" json:"time"`
	Notes      string `gorm:"size:1000" json:"notes"`
}

// Request is a requester's claim on one item.
type Request struct {
	ID             string        `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID         string        `gorm:"type:uuid;index;not null" json:"itemId"`
	ItemName       string        `gorm:"size:200" json:"itemName"`
	ItemImage      *string       `gorm:"type:text" json:"itemImage,omitempty"`
	RequesterID    string        `gorm:"size:128;index;not null" json:"requesterId"`
	RequesterName  string        `gorm:"size:255" json:"requesterName"`
	RequesterEmail string        `gorm:"size:255" json:"requesterEmail"`
	DonorID        string        `gorm:"size:128;index;not null" json:"donorId"`
	DonorName      string        `gorm:"size:255" json:"donorName"`
	Message        string        `gorm:"size:1000" json:"message"`
	Status         RequestStatus `gorm:"size:20;index;not null" json:"status"`

	Collection         CollectionInfo `gorm:"embedded;embeddedPrefix:collection_" json:"collection"`
	RefusalReason      string         `gorm:"size:500" json:"refusalReason,omitempty"`
	CancellationReason string         `gorm:"size:500" json:"cancellationReason,omitempty"`

	StatusChangedAt time.Time  `json:"statusChangedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RefusedAt       *time.Time `json:"refusedAt,omitempty"`
	CollectedAt     *time.Time `json:"collectedAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (Request) TableName() string { return RequestTable }

// Actor is the verified caller as seen by the store.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// DisplayName falls back to the email when no name is known.
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// QuotaUsage is the caller's monthly request allowance.
type QuotaUsage struct {
	Used      int `json:"used"`
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

type MyRequests struct {
	Requests []Request  `json:"requests"`
	Quota    QuotaUsage `json:"quota"`
}
