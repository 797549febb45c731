package server

import (
	"net/http"
	"strconv"

	websitedomain "bazaar/backend/internal/website/domain"
)

func (s *Server) handleCreateWebsite(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, s.logger, errMissingCredential)
		return
	}
	var req struct {
		DomainName string `json:"domain_name"`
	}
	if err := decode(r, &req); err != nil || req.DomainName == "" {
		writeValidationError(w, "domain_name is required")
		return
	}
	website, err := s.websites.Create(r.Context(), p.UserID, req.DomainName)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, "website created", websiteView(website))
}

func (s *Server) handleGetWebsite(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	writeJSON(w, http.StatusOK, "ok", websiteView(website))
}

func (s *Server) handleRenameWebsite(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		NewDomainName string `json:"new_domain_name"`
	}
	if err := decode(r, &req); err != nil || req.NewDomainName == "" {
		writeValidationError(w, "new_domain_name is required")
		return
	}
	if err := s.websites.Rename(r.Context(), website, p.UserID, req.NewDomainName); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "domain name updated", websiteView(website))
}

func (s *Server) handleSetOnline(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		Online *bool `json:"online"`
	}
	if err := decode(r, &req); err != nil || req.Online == nil {
		writeValidationError(w, "online is required")
		return
	}
	if err := s.websites.SetOnline(r.Context(), website, p.UserID, *req.Online); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "online status updated", websiteView(website))
}

func (s *Server) handleUpdateBio(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		Bio websitedomain.Bio `json:"bio"`
	}
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	if err := s.websites.UpdateBio(r.Context(), website, p.UserID, req.Bio); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "bio updated", websiteView(website))
}

func (s *Server) handleUpdateSEO(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		SEO websitedomain.SEO `json:"seo"`
	}
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	if err := s.websites.UpdateSEO(r.Context(), website, p.UserID, req.SEO); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "seo updated", websiteView(website))
}

func (s *Server) handleRenewSubscription(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	p, _ := PrincipalFromContext(r.Context())
	if err := s.websites.RenewSubscription(r.Context(), website, p.UserID); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "subscription renewed", map[string]any{
		"active":       website.Subscription.Active,
		"next_payment": website.Subscription.NextPayment,
	})
}

func (s *Server) handleListUpdates(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, total, err := s.websites.ListUpdates(r.Context(), website.ID, limit, offset)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	views := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		views = append(views, map[string]any{
			"id":         e.ID,
			"updated_by": e.UpdatedBy,
			"changes":    e.Changes,
			"updated_at": e.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{"updates": views, "total": total})
}

func (s *Server) handleDeleteUpdates(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decode(r, &req); err != nil || len(req.IDs) == 0 {
		writeValidationError(w, "ids is required")
		return
	}
	removed, err := s.websites.DeleteUpdates(r.Context(), website.ID, req.IDs)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "updates deleted", map[string]any{"removed": removed})
}

func (s *Server) handleRequestTransfer(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	if err := s.websites.RequestTransfer(r.Context(), website); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "transfer code sent", nil)
}

func (s *Server) handleConfirmTransfer(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	var req struct {
		Code          string `json:"code"`
		NewOwnerEmail string `json:"new_owner_email"`
	}
	if err := decode(r, &req); err != nil || req.Code == "" || req.NewOwnerEmail == "" {
		writeValidationError(w, "code and new_owner_email are required")
		return
	}
	if err := s.websites.ConfirmTransfer(r.Context(), website, req.Code, req.NewOwnerEmail); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "website transferred", websiteView(website))
}

func (s *Server) handleRequestDeletion(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	if err := s.websites.RequestDeletion(r.Context(), website); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "deletion code sent", nil)
}

func (s *Server) handleConfirmDeletion(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	var req struct {
		Code string `json:"code"`
	}
	if err := decode(r, &req); err != nil || req.Code == "" {
		writeValidationError(w, "code is required")
		return
	}
	if err := s.websites.ConfirmDeletion(r.Context(), website, req.Code); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "website deleted", nil)
}

func websiteView(w *websitedomain.Website) map[string]any {
	return map[string]any{
		"id":          w.ID,
		"domain_name": w.DomainName,
		"seller_id":   w.SellerID,
		"online":      w.IsOnline,
		"categories":  w.Categories,
		"bio":         w.Bio,
		"seo":         w.SEO,
		"banners":     w.Banners,
		"subscription": map[string]any{
			"price":        w.Subscription.Price,
			"active":       w.Subscription.Active,
			"last_payment": w.Subscription.LastPayment,
			"next_payment": w.Subscription.NextPayment,
		},
	}
}
