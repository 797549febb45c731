package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	websitedomain "bazaar/backend/internal/website/domain"
)

func (s *Server) handleListSupports(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	supports, err := s.websites.ListSupports(r.Context(), website)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(supports))
	for _, d := range supports {
		v := supportView(d.Membership)
		v["email"] = d.Email
		v["first_name"] = d.FirstName
		v["last_name"] = d.LastName
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{"supports": views})
}

func (s *Server) handleRequestAddSupport(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" {
		writeValidationError(w, "email is required")
		return
	}
	if err := s.websites.RequestAddSupport(r.Context(), website, req.Email); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "enrollment code sent", nil)
}

func (s *Server) handleAddSupport(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	var req struct {
		Email      string `json:"email"`
		Code       string `json:"code"`
		Permission string `json:"permission"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" || req.Code == "" || req.Permission == "" {
		writeValidationError(w, "email, code, and permission are required")
		return
	}
	m, err := s.websites.AddSupport(r.Context(), website, req.Email, req.Code, websitedomain.Permission(req.Permission))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, "support member added", supportView(m))
}

func (s *Server) handleRemoveSupport(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	if err := s.websites.RemoveSupport(r.Context(), website, userID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "support member removed", nil)
}

func (s *Server) handleGrantPermission(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	var req struct {
		Permission string `json:"permission"`
	}
	if err := decode(r, &req); err != nil || req.Permission == "" {
		writeValidationError(w, "permission is required")
		return
	}
	m, err := s.websites.GrantPermission(r.Context(), website, userID, websitedomain.Permission(req.Permission))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "permission granted", supportView(m))
}

func (s *Server) handleRevokePermission(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	perm := chi.URLParam(r, "permission")
	m, err := s.websites.RevokePermission(r.Context(), website, userID, websitedomain.Permission(perm))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "permission revoked", supportView(m))
}

func supportView(m *websitedomain.SupportMembership) map[string]any {
	return map[string]any{
		"user_id":     m.UserID,
		"permissions": m.Permissions,
		"created_at":  m.CreatedAt,
	}
}
