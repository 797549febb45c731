package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"bazaar/backend/internal/platform/authz"
	websitedomain "bazaar/backend/internal/website/domain"
)

const newAccessTokenHeader = "X-New-Access-Token"

// Authenticate resolves the caller from the bearer token and User-Agent. When
// the access token was refreshed in place, the replacement is surfaced on the
// response so the client can swap it in.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, s.logger, errMissingCredential)
			return
		}
		p, fresh, err := s.auth.Resolve(r.Context(), token, r.UserAgent())
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		if fresh != "" {
			w.Header().Set(newAccessTokenHeader, fresh)
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// ResolveWebsite binds the tenant named by the request's domain_name field to
// the request context. The field comes from the JSON body, or from the query
// string for bodyless requests; the body is rewound for the handler.
func (s *Server) ResolveWebsite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("domain_name")
		if name == "" && r.Body != nil {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeValidationError(w, "unreadable request body")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			var probe struct {
				DomainName string `json:"domain_name"`
			}
			if len(body) > 0 {
				if err := json.Unmarshal(body, &probe); err != nil {
					writeValidationError(w, "malformed JSON body")
					return
				}
			}
			name = probe.DomainName
		}
		if name == "" {
			writeValidationError(w, "domain_name is required")
			return
		}
		website, err := s.websites.ResolveTenant(r.Context(), name)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withWebsite(r.Context(), website)))
	})
}

// CheckSubscription refuses tenant mutations while the storefront's
// subscription is inactive or lapsed, persisting the lapse flip on first
// sight.
func (s *Server) CheckSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		website, ok := WebsiteFromContext(r.Context())
		if !ok {
			writeValidationError(w, "domain_name is required")
			return
		}
		if err := authz.CheckSubscription(r.Context(), s.subscriptions, website, s.now()); err != nil {
			writeError(w, s.logger, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermissions allows the website owner, a support admin, or a support
// member holding any one of the given capability tags. With no tags the route
// is owner-or-admin only.
func (s *Server) RequirePermissions(required ...websitedomain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, s.logger, errMissingCredential)
				return
			}
			website, ok := WebsiteFromContext(r.Context())
			if !ok {
				writeValidationError(w, "domain_name is required")
				return
			}
			membership, err := s.websites.Membership(r.Context(), website, p.UserID)
			if err != nil {
				writeError(w, s.logger, err)
				return
			}
			if err := authz.Evaluate(p, website, membership, required...); err != nil {
				writeError(w, s.logger, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner restricts a route to the website's owner. Transfer, deletion,
// and support management never fall through to admins.
func (s *Server) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, s.logger, errMissingCredential)
			return
		}
		website, ok := WebsiteFromContext(r.Context())
		if !ok {
			writeValidationError(w, "domain_name is required")
			return
		}
		if p.UserID != website.SellerID {
			writeError(w, s.logger, authz.ErrInsufficientPermission)
			return
		}
		next.ServeHTTP(w, r)
	})
}
