package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "ACTIVE"
	ReservationStatusAvailable ReservationStatus = "AVAILABLE"
	ReservationStatusFulfilled ReservationStatus = "FULFILLED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
)

// HoldWindow is how long a promoted reservation waits for pickup.
const HoldWindow = 3 * 24 * time.Hour

type Reservation struct {
	ID                   string            `json:"id"`
	ISBN                 string            `json:"isbn"`
	PatronID             string            `json:"patron_id"`
	Status               ReservationStatus `json:"status"`
	ReservationDate      time.Time         `json:"reservation_date"`
	ExpiryDate           *time.Time        `json:"expiry_date,omitempty"`
	NotificationSentDate *time.Time        `json:"notification_sent_date,omitempty"`
	// QueuePosition is 1-based while ACTIVE and 0 otherwise.
	QueuePosition int `json:"queue_position"`
}

// IsHeld reports whether the reservation still occupies the patron's claim on the book.
func (r *Reservation) IsHeld() bool {
	return r.Status == ReservationStatusActive || r.Status == ReservationStatusAvailable
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == ReservationStatusAvailable && r.ExpiryDate != nil && now.After(*r.ExpiryDate)
}

func (r Reservation) Clone() Reservation {
	if r.ExpiryDate != nil {
		t := *r.ExpiryDate
		r.ExpiryDate = &t
	}
	if r.NotificationSentDate != nil {
		t := *r.NotificationSentDate
		r.NotificationSentDate = &t
	}
	return r
}
