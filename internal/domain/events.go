package domain

import "time"

type ReservationEventType string

const (
	ReservationEventCreated   ReservationEventType = "RESERVATION_CREATED"
	ReservationEventReady     ReservationEventType = "RESERVATION_READY"
	ReservationEventCancelled ReservationEventType = "RESERVATION_CANCELLED"
	ReservationEventExpired   ReservationEventType = "RESERVATION_EXPIRED"
)

// ReservationEvent is implemented only by the event types in this file.
type ReservationEvent interface {
	Type() ReservationEventType
	OccurredAt() time.Time
	ReservationID() string
	isReservationEvent()
}

type ReservationCreated struct {
	Reservation Reservation
	At          time.Time
}

// ReservationReady carries the patron when it could be resolved; Patron is nil otherwise.
type ReservationReady struct {
	Reservation Reservation
	Patron      *Patron
	At          time.Time
}

type ReservationCancelled struct {
	Reservation Reservation
	At          time.Time
}

type ReservationExpired struct {
	Reservation Reservation
	At          time.Time
}

func (e ReservationCreated) Type() ReservationEventType   { return ReservationEventCreated }
func (e ReservationReady) Type() ReservationEventType     { return ReservationEventReady }
func (e ReservationCancelled) Type() ReservationEventType { return ReservationEventCancelled }
func (e ReservationExpired) Type() ReservationEventType   { return ReservationEventExpired }

func (e ReservationCreated) OccurredAt() time.Time   { return e.At }
func (e ReservationReady) OccurredAt() time.Time     { return e.At }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }
func (e ReservationExpired) OccurredAt() time.Time   { return e.At }

func (e ReservationCreated) ReservationID() string   { return e.Reservation.ID }
func (e ReservationReady) ReservationID() string     { return e.Reservation.ID }
func (e ReservationCancelled) ReservationID() string { return e.Reservation.ID }
func (e ReservationExpired) ReservationID() string   { return e.Reservation.ID }

func (ReservationCreated) isReservationEvent()   {}
func (ReservationReady) isReservationEvent()     {}
func (ReservationCancelled) isReservationEvent() {}
func (ReservationExpired) isReservationEvent()   {}
