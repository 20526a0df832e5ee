package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/ticketdesk/services/ticket/domain/events"
)

func TestTicketCreatedEvent_JSONFieldNames(t *testing.T) {
	evt := events.TicketCreatedEvent{
		EventID:     uuid.New(),
		Version:     1,
		TicketID:    uuid.New(),
		OrgID:       uuid.New(),
		Title:       "Printer on fire",
		Description: "Third floor",
		Status:      "ToDo",
		OccurredAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}

	for _, field := range []string{"event_id", "version", "ticket_id", "org_id", "title", "description", "status", "occurred_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
}

func TestTicketUpdatedEvent_Decode(t *testing.T) {
	body := `{"event_id":"550e8400-e29b-41d4-a716-446655440001","version":1,` +
		`"ticket_id":"550e8400-e29b-41d4-a716-446655440000","org_id":"660e8400-e29b-41d4-a716-446655440000",` +
		`"title":"Renamed","description":"d","status":"Done",` +
		`"created_at":"2025-01-15T12:00:00Z","occurred_at":"2025-01-16T12:00:00Z"}`

	var evt events.TicketUpdatedEvent
	if err := json.Unmarshal([]byte(body), &evt); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if evt.Title != "Renamed" || evt.Status != "Done" {
		t.Errorf("unexpected event: %+v", evt)
	}
	if !evt.CreatedAt.Equal(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt: got %v", evt.CreatedAt)
	}
}

func TestTopics_Values(t *testing.T) {
	tests := map[string]string{
		events.TopicTicketCreated:   "ticket.created",
		events.TopicTicketUpdated:   "ticket.updated",
		events.TopicTicketEscalated: "ticket.escalated",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
