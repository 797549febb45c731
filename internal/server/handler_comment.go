package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	commentdomain "bazaar/backend/internal/comment/domain"
	"bazaar/backend/internal/platform/authz"
)

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, s.logger, errMissingCredential)
		return
	}
	slug, ok := s.requireProduct(w, r, website.ID)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	c := &commentdomain.Comment{
		ID:          uuid.NewString(),
		WebsiteID:   website.ID,
		ProductSlug: slug,
		AuthorID:    p.UserID,
		Content:     req.Content,
		CreatedAt:   s.now().UTC(),
	}
	if err := c.Validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := s.comments.Create(r.Context(), c); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, "comment added", commentView(c))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	slug, ok := s.requireProduct(w, r, website.ID)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	comments, total, err := s.comments.ListByProduct(r.Context(), website.ID, slug, limit, offset)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView(c))
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{"comments": views, "count": total})
}

func (s *Server) handleCountComments(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	slug, ok := s.requireProduct(w, r, website.ID)
	if !ok {
		return
	}
	total, err := s.comments.CountByProduct(r.Context(), website.ID, slug)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{"count": total})
}

// handleDeleteComment lets the author remove their own comment; anyone else
// needs moderation rights on the website (owner, admin, or the comment tag).
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, s.logger, errMissingCredential)
		return
	}
	slug, ok := s.requireProduct(w, r, website.ID)
	if !ok {
		return
	}
	c, err := s.comments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if c == nil || c.WebsiteID != website.ID || c.ProductSlug != slug {
		writeJSON(w, http.StatusNotFound, "comment not found", nil)
		return
	}
	if c.AuthorID != p.UserID {
		membership, err := s.websites.Membership(r.Context(), website, p.UserID)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		if err := authz.Evaluate(p, website, membership, permComment); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}
	if err := s.comments.Delete(r.Context(), c.ID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "comment deleted", nil)
}

// requireProduct resolves the slug route param to an existing product,
// 404ing when the product is unknown.
func (s *Server) requireProduct(w http.ResponseWriter, r *http.Request, websiteID string) (string, bool) {
	slug := chi.URLParam(r, "slug")
	p, err := s.products.GetBySlug(r.Context(), websiteID, slug)
	if err != nil {
		writeError(w, s.logger, err)
		return "", false
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, "product not found", nil)
		return "", false
	}
	return slug, true
}

func commentView(c *commentdomain.Comment) map[string]any {
	return map[string]any{
		"id":           c.ID,
		"product_slug": c.ProductSlug,
		"author_id":    c.AuthorID,
		"content":      c.Content,
		"created_at":   c.CreatedAt,
	}
}
