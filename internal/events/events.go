// Package events defines the company-scoped change notifications emitted by
// the service layer and the sinks that deliver them.
package events

import (
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// Type identifies what happened.
type Type string

const (
	// ActivityCreated is emitted after an activity is stored.
	ActivityCreated Type = "activity.created"
	// ActivityDeleted is emitted after an activity is removed.
	ActivityDeleted Type = "activity.deleted"
	// TargetCreated is emitted after an emission target is stored.
	TargetCreated Type = "target.created"
	// Heartbeat keeps idle streams open. It is never published to the bus.
	Heartbeat Type = "heartbeat"
)

// Event is a single notification. An empty CompanyID addresses every client.
type Event struct {
	Type      Type      `json:"type" msgpack:"type"`
	CompanyID string    `json:"company_id,omitempty" msgpack:"company_id,omitempty"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Data      any       `json:"data,omitempty" msgpack:"data,omitempty"`
}

// ActivityDeletedData is the payload of an ActivityDeleted event.
type ActivityDeletedData struct {
	ID string `json:"id" msgpack:"id"`
}

// NewActivityCreated builds the event for a newly stored activity.
func NewActivityCreated(a *domain.Activity) Event {
	return Event{
		Type:      ActivityCreated,
		CompanyID: a.CompanyID,
		Timestamp: time.Now(),
		Data:      a,
	}
}

// NewActivityDeleted builds the event for a removed activity.
func NewActivityDeleted(companyID, activityID string) Event {
	return Event{
		Type:      ActivityDeleted,
		CompanyID: companyID,
		Timestamp: time.Now(),
		Data:      ActivityDeletedData{ID: activityID},
	}
}

// NewTargetCreated builds the event for a newly stored target.
func NewTargetCreated(t *domain.EmissionTarget) Event {
	return Event{
		Type:      TargetCreated,
		CompanyID: t.CompanyID,
		Timestamp: time.Now(),
		Data:      t,
	}
}

// NewHeartbeat builds a keepalive event for all clients.
func NewHeartbeat() Event {
	return Event{Type: Heartbeat, Timestamp: time.Now()}
}

// Emitter accepts events for delivery. Emit must not block the caller.
type Emitter interface {
	Emit(Event)
}

// Noop discards every event.
type Noop struct{}

// Emit implements Emitter.
func (Noop) Emit(Event) {}

// Fanout forwards each event to every emitter it holds.
type Fanout []Emitter

// Emit implements Emitter.
func (f Fanout) Emit(evt Event) {
	for _, e := range f {
		if e != nil {
			e.Emit(evt)
		}
	}
}
