package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	domainevents "github.com/ghuser/ticketdesk/services/ticket/domain/events"
	"github.com/ghuser/ticketdesk/services/ticket/domain/models"
	"github.com/ghuser/ticketdesk/services/ticket/infrastructure/persistence/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	msgs   []*message.Message
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	for range msgs {
		p.topics = append(p.topics, topic)
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func seedTicket(t *testing.T, repo *memory.TicketRepository, status models.Status) *models.Ticket {
	t.Helper()
	title, err := models.NewTicketTitle("Printer on fire")
	if err != nil {
		t.Fatal(err)
	}
	desc, err := models.NewTicketDescription("Third floor")
	if err != nil {
		t.Fatal(err)
	}
	ticket, err := models.NewTicket(uuid.New(), title, desc)
	if err != nil {
		t.Fatal(err)
	}
	ticket.MoveTo(status)
	if err := repo.Save(context.Background(), ticket); err != nil {
		t.Fatal(err)
	}
	return ticket
}

func runEscalation(t *testing.T, acts *Activities, in EscalationInput) (bool, error) {
	t.Helper()
	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(acts)
	env.ExecuteWorkflow(EscalateStaleTicket, in)

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		return false, err
	}
	var escalated bool
	if err := env.GetWorkflowResult(&escalated); err != nil {
		t.Fatalf("workflow result: %v", err)
	}
	return escalated, nil
}

func TestEscalateStaleTicket(t *testing.T) {
	tests := []struct {
		name      string
		status    models.Status
		deleted   bool
		escalated bool
	}{
		{"still in ToDo", models.StatusToDo, false, true},
		{"in progress", models.StatusInProgress, false, false},
		{"done", models.StatusDone, false, false},
		{"deleted", models.StatusToDo, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewTicketRepository()
			ticket := seedTicket(t, repo, tt.status)
			if tt.deleted {
				_ = repo.Delete(context.Background(), ticket.OrgID, ticket.ID)
			}
			pub := &recordingPublisher{}

			escalated, err := runEscalation(t, &Activities{Tickets: repo, Publisher: pub}, EscalationInput{
				TicketID: ticket.ID,
				OrgID:    ticket.OrgID,
				After:    24 * time.Hour,
			})
			if err != nil {
				t.Fatalf("unexpected workflow error: %v", err)
			}
			if escalated != tt.escalated {
				t.Fatalf("expected escalated=%v, got %v", tt.escalated, escalated)
			}

			wantMsgs := 0
			if tt.escalated {
				wantMsgs = 1
			}
			if len(pub.msgs) != wantMsgs {
				t.Fatalf("expected %d published messages, got %d", wantMsgs, len(pub.msgs))
			}
		})
	}
}

func TestEscalateStaleTicket_PublishFailure(t *testing.T) {
	repo := memory.NewTicketRepository()
	ticket := seedTicket(t, repo, models.StatusToDo)
	pub := &recordingPublisher{err: temporal.NewNonRetryableApplicationError("bus down", "BusDown", errors.New("bus down"))}

	_, err := runEscalation(t, &Activities{Tickets: repo, Publisher: pub}, EscalationInput{
		TicketID: ticket.ID,
		OrgID:    ticket.OrgID,
		After:    time.Hour,
	})
	if err == nil {
		t.Fatal("expected workflow error when publishing keeps failing")
	}
}

func TestPublishEscalation_Payload(t *testing.T) {
	pub := &recordingPublisher{}
	acts := &Activities{Publisher: pub}

	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()
	env.RegisterActivity(acts)

	in := EscalationInput{TicketID: uuid.New(), OrgID: uuid.New(), After: 2 * time.Hour}
	if _, err := env.ExecuteActivity(acts.PublishEscalation, in); err != nil {
		t.Fatalf("activity: %v", err)
	}

	if len(pub.topics) != 1 || pub.topics[0] != domainevents.TopicTicketEscalated {
		t.Fatalf("unexpected topics %v", pub.topics)
	}
	var event domainevents.TicketEscalatedEvent
	if err := json.Unmarshal(pub.msgs[0].Payload, &event); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if event.TicketID != in.TicketID || event.OrgID != in.OrgID || event.StaleFor != in.After {
		t.Fatalf("unexpected event %+v", event)
	}
	if got := pub.msgs[0].Metadata.Get("event_id"); got != event.EventID.String() {
		t.Fatalf("event_id metadata %q does not match event id %s", got, event.EventID)
	}
}

func TestLoadTicketStatus(t *testing.T) {
	repo := memory.NewTicketRepository()
	ticket := seedTicket(t, repo, models.StatusInProgress)
	acts := &Activities{Tickets: repo}

	var s testsuite.WorkflowTestSuite
	env := s.NewTestActivityEnvironment()
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.LoadTicketStatus, EscalationInput{TicketID: ticket.ID, OrgID: ticket.OrgID})
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	var res TicketStatusResult
	if err := val.Get(&res); err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Status != "InProgress" {
		t.Fatalf("unexpected result %+v", res)
	}
}

type fakeStarter struct {
	opts client.StartWorkflowOptions
	name interface{}
	args []interface{}
}

func (f *fakeStarter) ExecuteWorkflow(_ context.Context, opts client.StartWorkflowOptions, wf interface{}, args ...interface{}) (client.WorkflowRun, error) {
	f.opts, f.name, f.args = opts, wf, args
	return nil, nil
}

func TestStartEscalation(t *testing.T) {
	starter := &fakeStarter{}
	in := EscalationInput{TicketID: uuid.New(), OrgID: uuid.New(), After: time.Minute}

	if _, err := StartEscalation(context.Background(), starter, "ticket-escalation", in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if starter.opts.ID != EscalationWorkflowID(in.TicketID) {
		t.Fatalf("unexpected workflow id %q", starter.opts.ID)
	}
	if starter.opts.TaskQueue != "ticket-escalation" {
		t.Fatalf("unexpected task queue %q", starter.opts.TaskQueue)
	}
	if starter.name != EscalationWorkflowName {
		t.Fatalf("unexpected workflow %v", starter.name)
	}
	if len(starter.args) != 1 || starter.args[0] != in {
		t.Fatalf("unexpected args %v", starter.args)
	}
}
