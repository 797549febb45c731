package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productdomain "bazaar/backend/internal/product/domain"
)

type productRequest struct {
	Slug          string                       `json:"slug"`
	Title         string                       `json:"title"`
	Category      string                       `json:"category"`
	Price         int64                        `json:"price"`
	Active        *bool                        `json:"active"`
	SpecialOffers []productdomain.SpecialOffer `json:"special_offers"`
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	p := &productdomain.Product{
		ID:            uuid.NewString(),
		WebsiteID:     website.ID,
		Slug:          req.Slug,
		Title:         req.Title,
		Category:      req.Category,
		Price:         req.Price,
		Active:        req.Active == nil || *req.Active,
		SpecialOffers: req.SpecialOffers,
		CreatedAt:     s.now().UTC(),
	}
	if err := p.Validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	existing, err := s.products.GetBySlug(r.Context(), website.ID, p.Slug)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if existing != nil {
		writeValidationError(w, "slug is already in use")
		return
	}
	if err := s.products.Create(r.Context(), p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, "product created", productView(p, s.now()))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	p, err := s.products.GetBySlug(r.Context(), website.ID, slug)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, "product not found", nil)
		return
	}
	var req productRequest
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Price > 0 {
		p.Price = req.Price
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.SpecialOffers != nil {
		p.SpecialOffers = req.SpecialOffers
	}
	if err := p.Validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := s.products.Update(r.Context(), p); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "product updated", productView(p, s.now()))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	p, err := s.products.GetBySlug(r.Context(), website.ID, slug)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, "product not found", nil)
		return
	}
	if err := s.products.Delete(r.Context(), website.ID, slug); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "product deleted", nil)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	products, total, err := s.products.ListByWebsite(r.Context(), website.ID, limit, offset)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	now := s.now()
	views := make([]map[string]any, 0, len(products))
	for _, p := range products {
		views = append(views, productView(p, now))
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{"products": views, "total": total})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	website, _ := WebsiteFromContext(r.Context())
	slug := chi.URLParam(r, "slug")
	p, err := s.products.GetBySlug(r.Context(), website.ID, slug)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if p == nil || !p.Active {
		writeJSON(w, http.StatusNotFound, "product not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, "ok", productView(p, s.now()))
}

func productView(p *productdomain.Product, now time.Time) map[string]any {
	return map[string]any{
		"slug":            p.Slug,
		"title":           p.Title,
		"category":        p.Category,
		"price":           p.Price,
		"effective_price": p.EffectivePrice(now),
		"active":          p.Active,
		"special_offers":  p.SpecialOffers,
	}
}
