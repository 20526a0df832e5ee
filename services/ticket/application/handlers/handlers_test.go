package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/ticketdesk/pkg/auth"
	"github.com/ghuser/ticketdesk/pkg/logger"
	appsvcs "github.com/ghuser/ticketdesk/services/ticket/application/services"
	"github.com/ghuser/ticketdesk/services/ticket/domain/repositories"
	"github.com/ghuser/ticketdesk/services/ticket/infrastructure/persistence/memory"
)

// newTestRouter mounts every ticket handler behind a middleware that
// authenticates as orgID. A nil orgID leaves the request unauthenticated.
func newTestRouter(orgID uuid.UUID) (http.Handler, *memory.TicketRepository) {
	repo := memory.NewTicketRepository()
	svcs := &appsvcs.Services{Ticket: appsvcs.NewTicketService(repo, nil, logger.Discard())}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if orgID != uuid.Nil {
				req = req.WithContext(auth.WithOrgID(req.Context(), orgID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/tickets", NewPostTicketHandler(svcs).Execute)
	r.Get("/tickets", NewListTicketsHandler(svcs).Execute)
	r.Get("/tickets/{id}", NewGetTicketHandler(svcs).Execute)
	r.Patch("/tickets/{id}", NewPatchTicketHandler(svcs).Execute)
	r.Delete("/tickets/{id}", NewDeleteTicketHandler(svcs).Execute)
	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func createTicket(t *testing.T, h http.Handler, title string) TicketResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/tickets", `{"title":"`+title+`","description":"details"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[TicketResponse](t, w)
}

func TestPostTicket(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", `{"title":"Printer on fire","description":"Third floor"}`, http.StatusCreated, ""},
		{"exactly 50 characters", `{"title":"` + strings.Repeat("a", 50) + `","description":"d"}`, http.StatusCreated, ""},
		{"empty title", `{"title":"","description":"d"}`, http.StatusUnprocessableEntity, "invalid ticket title: The title cannot be empty"},
		{"51 characters", `{"title":"` + strings.Repeat("a", 51) + `","description":"d"}`, http.StatusUnprocessableEntity, "invalid ticket title: The title cannot be longer than 50 characters"},
		{"empty description", `{"title":"t","description":""}`, http.StatusUnprocessableEntity, "invalid ticket description: The description cannot be empty"},
		{"malformed json", `{"title":`, http.StatusBadRequest, "Invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(orgID)
			w := do(t, h, http.MethodPost, "/tickets", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantError != "" {
				if got := decode[ErrorResponse](t, w).Error; got != tt.wantError {
					t.Fatalf("expected error %q, got %q", tt.wantError, got)
				}
			}
		})
	}

	t.Run("response body", func(t *testing.T) {
		h, _ := newTestRouter(orgID)
		got := createTicket(t, h, "Printer on fire")
		if got.OrgID != orgID || got.Title != "Printer on fire" || got.Status != "ToDo" {
			t.Fatalf("unexpected response %+v", got)
		}
	})
}

func TestHandlers_Unauthenticated(t *testing.T) {
	h, _ := newTestRouter(uuid.Nil)
	id := uuid.New().String()

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodPost, "/tickets", `{"title":"t","description":"d"}`},
		{http.MethodGet, "/tickets", ""},
		{http.MethodGet, "/tickets/" + id, ""},
		{http.MethodPatch, "/tickets/" + id, `{"status":"Done"}`},
		{http.MethodDelete, "/tickets/" + id, ""},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(t, h, tc.method, tc.path, tc.body)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestGetTicket(t *testing.T) {
	h, _ := newTestRouter(uuid.New())
	created := createTicket(t, h, "Broken chair")

	t.Run("found", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets/"+created.ID.String(), "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if got := decode[TicketResponse](t, w); got.ID != created.ID || got.Title != "Broken chair" {
			t.Fatalf("unexpected response %+v", got)
		}
	})

	t.Run("not found", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets/"+uuid.New().String(), "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets/not-a-uuid", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestListTickets(t *testing.T) {
	h, _ := newTestRouter(uuid.New())
	for _, title := range []string{"one", "two", "three"} {
		createTicket(t, h, title)
	}

	t.Run("defaults", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		got := decode[ListTicketsResponse](t, w)
		if got.Total != 3 || len(got.Items) != 3 || got.Limit != defaultPageSize || got.Offset != 0 {
			t.Fatalf("unexpected page %+v", got)
		}
	})

	t.Run("paginated", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets?limit=2&offset=2", "")
		got := decode[ListTicketsResponse](t, w)
		if got.Total != 3 || len(got.Items) != 1 {
			t.Fatalf("unexpected page %+v", got)
		}
	})

	t.Run("limit out of range", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets?limit=500", "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("non-numeric offset", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/tickets?offset=abc", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestPatchTicket(t *testing.T) {
	h, _ := newTestRouter(uuid.New())
	created := createTicket(t, h, "Printer on fire")
	path := "/tickets/" + created.ID.String()

	t.Run("updates status case-insensitively", func(t *testing.T) {
		w := do(t, h, http.MethodPatch, path, `{"status":"inprogress"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		got := decode[TicketResponse](t, w)
		if got.Status != "InProgress" || got.Title != "Printer on fire" {
			t.Fatalf("unexpected response %+v", got)
		}
	})

	t.Run("rejects long title", func(t *testing.T) {
		w := do(t, h, http.MethodPatch, path, `{"title":"`+strings.Repeat("x", 51)+`"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		w := do(t, h, http.MethodPatch, path, `{"status":"Closed"}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
		if got := decode[ErrorResponse](t, w).Error; got != "invalid ticket status: Invalid status: Closed" {
			t.Fatalf("unexpected error %q", got)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		w := do(t, h, http.MethodPatch, path, `{}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
	})

	t.Run("missing ticket", func(t *testing.T) {
		w := do(t, h, http.MethodPatch, "/tickets/"+uuid.New().String(), `{"status":"Done"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestDeleteTicket(t *testing.T) {
	h, repo := newTestRouter(uuid.New())
	created := createTicket(t, h, "Delete me")
	path := "/tickets/" + created.ID.String()

	w := do(t, h, http.MethodDelete, path, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", w.Body.String())
	}

	_, total, _ := repo.FindByOrgID(t.Context(), created.OrgID, repositories.QueryOpts{Limit: 10})
	if total != 0 {
		t.Fatalf("expected ticket removed, %d remain", total)
	}

	w = do(t, h, http.MethodDelete, path, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}
