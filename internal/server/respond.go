package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"bazaar/backend/internal/auth"
	"bazaar/backend/internal/platform/authz"
	"bazaar/backend/internal/verification"
	websitedomain "bazaar/backend/internal/website/domain"
	websiterepo "bazaar/backend/internal/website/repository"
	websiteservice "bazaar/backend/internal/website/service"
)

// StatusSubscriptionRequired is returned when the storefront's subscription
// is inactive or has lapsed.
const StatusSubscriptionRequired = 420

// envelope is the uniform JSON body for every response.
type envelope struct {
	Message    string `json:"message"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, message string, data any) {
	status := "success"
	if code >= 400 {
		status = "error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{
		Message:    message,
		Status:     status,
		StatusCode: code,
		Data:       data,
	})
}

var errMissingCredential = errors.New("missing access token")

// statusFor maps service sentinels onto the canonical status table. Unmapped
// errors are storage or programming failures and come back as 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, websiterepo.ErrDomainTaken),
		errors.Is(err, websitedomain.ErrAlreadyAdmin),
		errors.Is(err, websitedomain.ErrDuplicatePermission),
		errors.Is(err, websitedomain.ErrPermissionNotHeld),
		errors.Is(err, websitedomain.ErrUnknownPermission),
		errors.Is(err, websitedomain.ErrTooManyPermissions),
		errors.Is(err, websiteservice.ErrAlreadyOwnsWebsite),
		errors.Is(err, websiteservice.ErrMemberExists),
		errors.Is(err, verification.ErrCodeNotFound),
		errors.Is(err, verification.ErrCodeExpired),
		errors.Is(err, verification.ErrCodeMismatch),
		errors.Is(err, verification.ErrCodeNotConfirmed),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrPasswordTooShort):
		return http.StatusBadRequest
	case errors.Is(err, errMissingCredential),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrAccountLocked),
		errors.Is(err, auth.ErrAlreadyLoggedIn),
		errors.Is(err, authz.ErrNotSupportRole),
		errors.Is(err, authz.ErrNotAMember),
		errors.Is(err, authz.ErrInsufficientPermission):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrSessionNotFound),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, websiteservice.ErrTenantNotFound),
		errors.Is(err, websiteservice.ErrUserNotFound),
		errors.Is(err, websiteservice.ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, authz.ErrSubscriptionInactive),
		errors.Is(err, authz.ErrSubscriptionExpired):
		return StatusSubscriptionRequired
	}
	var rateErr *verification.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError maps err onto the status table. 500s hide the cause from the
// client and log it instead.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, code, "something went wrong", nil)
		return
	}
	writeJSON(w, code, err.Error(), nil)
}

// writeValidationError is for malformed input the services never see.
func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, message, nil)
}
