package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	ticketdomain "bazaar/backend/internal/ticket/domain"
)

func (s *Server) handleOpenTicket(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, s.logger, errMissingCredential)
		return
	}
	var req struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	now := s.now().UTC()
	t := &ticketdomain.Ticket{
		ID:        uuid.NewString(),
		WebsiteID: website.ID,
		AuthorID:  p.UserID,
		Subject:   req.Subject,
		Body:      req.Body,
		Status:    ticketdomain.StatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := s.tickets.Create(r.Context(), t); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, "ticket opened", ticketView(t))
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	tickets, total, err := s.tickets.ListByWebsite(r.Context(), website.ID, limit, offset)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(tickets))
	for _, t := range tickets {
		views = append(views, ticketView(t))
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{"tickets": views, "total": total})
}

func (s *Server) handleAnswerTicket(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	t, ok := s.loadTicket(w, r, website.ID)
	if !ok {
		return
	}
	var req struct {
		Answer string `json:"answer"`
	}
	if err := decode(r, &req); err != nil || req.Answer == "" {
		writeValidationError(w, "answer is required")
		return
	}
	now := s.now().UTC()
	if err := s.tickets.UpdateAnswer(r.Context(), t.ID, req.Answer, ticketdomain.StatusAnswered, now); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t.Answer = req.Answer
	t.Status = ticketdomain.StatusAnswered
	t.UpdatedAt = now
	writeJSON(w, http.StatusOK, "ticket answered", ticketView(t))
}

func (s *Server) handleCloseTicket(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	t, ok := s.loadTicket(w, r, website.ID)
	if !ok {
		return
	}
	now := s.now().UTC()
	if err := s.tickets.UpdateAnswer(r.Context(), t.ID, t.Answer, ticketdomain.StatusClosed, now); err != nil {
		writeError(w, s.logger, err)
		return
	}
	t.Status = ticketdomain.StatusClosed
	t.UpdatedAt = now
	writeJSON(w, http.StatusOK, "ticket closed", ticketView(t))
}

// loadTicket fetches the ticket from the id route param, refusing tickets
// that belong to another website.
func (s *Server) loadTicket(w http.ResponseWriter, r *http.Request, websiteID string) (*ticketdomain.Ticket, bool) {
	id := chi.URLParam(r, "id")
	t, err := s.tickets.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return nil, false
	}
	if t == nil || t.WebsiteID != websiteID {
		writeJSON(w, http.StatusNotFound, "ticket not found", nil)
		return nil, false
	}
	return t, true
}

func ticketView(t *ticketdomain.Ticket) map[string]any {
	return map[string]any{
		"id":         t.ID,
		"author_id":  t.AuthorID,
		"subject":    t.Subject,
		"body":       t.Body,
		"answer":     t.Answer,
		"status":     t.Status,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}
