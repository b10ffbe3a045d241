package domain

import (
	"fmt"
	"time"
)

type EventKind string

const (
	EventRentalOpened  EventKind = "rental.opened"
	EventRentalClosed  EventKind = "rental.closed"
	EventRentalDeleted EventKind = "rental.deleted"
)

// Event is a post-commit fact emitted by the occupancy engine. Events are only
// produced for transactions that committed.
type Event struct {
	Kind       EventKind `json:"kind"`
	RentalID   int32     `json:"rentalId"`
	ClientID   int32     `json:"clientId"`
	BoxID      int32     `json:"boxId"`
	ActorID    int32     `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// AuditAction renders the event as a log entry description.
func (e Event) AuditAction() string {
	switch e.Kind {
	case EventRentalOpened:
		return fmt.Sprintf("Opened rental %d for client %d on box %d", e.RentalID, e.ClientID, e.BoxID)
	case EventRentalClosed:
		return fmt.Sprintf("Closed rental %d on box %d", e.RentalID, e.BoxID)
	case EventRentalDeleted:
		return fmt.Sprintf("Deleted rental %d on box %d", e.RentalID, e.BoxID)
	}
	return string(e.Kind)
}
