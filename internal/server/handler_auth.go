package server

import (
	"encoding/json"
	"net/http"

	"bazaar/backend/internal/auth"
	verdomain "bazaar/backend/internal/verification/domain"
	websitedomain "bazaar/backend/internal/website/domain"
)

// Capability aliases to keep route declarations short.
var (
	permProduct = websitedomain.PermissionProduct
	permOrder   = websitedomain.PermissionOrder
	permComment = websitedomain.PermissionComment
	permSEO     = websitedomain.PermissionSEO
)

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

type registerRequest struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeValidationError(w, "email and password are required")
		return
	}
	u, err := s.auth.Register(r.Context(), req.Email, req.Phone, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	// Verification failures must not roll back the account; the code can be
	// re-requested.
	if err := s.codes.Issue(r.Context(), u.Email, verdomain.PurposeVerifyEmail); err != nil {
		s.logger.Error().Err(err).Str("email", u.Email).Msg("verification code issue failed")
	}
	writeJSON(w, http.StatusCreated, "account created, verification code sent", map[string]any{
		"id":    u.ID,
		"email": u.Email,
	})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	if req.Email == "" || req.Code == "" {
		writeValidationError(w, "email and code are required")
		return
	}
	if err := s.codes.Consume(r.Context(), req.Email, verdomain.PurposeVerifyEmail, req.Code); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.auth.VerifyEmail(r.Context(), req.Email); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "email verified", nil)
}

// handleResendVerification mails a fresh code only to registered addresses,
// but answers identically either way so it does not reveal which addresses
// have accounts.
func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" {
		writeValidationError(w, "email is required")
		return
	}
	if err := s.issueIfRegistered(r, req.Email, verdomain.PurposeVerifyEmail); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "verification code sent", nil)
}

// issueIfRegistered mails a code when the address belongs to an account and
// silently does nothing otherwise.
func (s *Server) issueIfRegistered(r *http.Request, email string, purpose verdomain.Purpose) error {
	u, err := s.auth.UserByEmail(r.Context(), email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	return s.codes.Issue(r.Context(), email, purpose)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" {
		writeValidationError(w, "email is required")
		return
	}
	if err := s.issueIfRegistered(r, req.Email, verdomain.PurposeResetPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "password reset code sent", nil)
}

func (s *Server) handleVerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" || req.Code == "" {
		writeValidationError(w, "email and code are required")
		return
	}
	if err := s.codes.Confirm(r.Context(), req.Email, verdomain.PurposeResetPassword, req.Code); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "reset code verified", nil)
}

// handleResetPassword sets the new password once the reset code for the
// address has been confirmed, then closes every open session.
func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"new_password"`
	}
	if err := decode(r, &req); err != nil || req.Email == "" || req.NewPassword == "" {
		writeValidationError(w, "email and new_password are required")
		return
	}
	// Reject weak passwords before spending the confirmed code.
	if len(req.NewPassword) < auth.MinPasswordLength {
		writeError(w, s.logger, auth.ErrPasswordTooShort)
		return
	}
	if err := s.codes.Redeem(r.Context(), req.Email, verdomain.PurposeResetPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "password has been reset", nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeValidationError(w, "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeValidationError(w, "email and password are required")
		return
	}
	res, err := s.auth.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "logged in", map[string]any{
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"user": map[string]any{
			"id":         res.User.ID,
			"email":      res.User.Email,
			"first_name": res.User.FirstName,
			"last_name":  res.User.LastName,
			"roles":      res.User.RoleStrings(),
		},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), bearerToken(r), r.UserAgent()); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "logged out", nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, s.logger, errMissingCredential)
		return
	}
	writeJSON(w, http.StatusOK, "ok", map[string]any{
		"id":    p.UserID,
		"roles": p.Roles,
	})
}
