package handlers

import (
	"net/http"

	"github.com/vybr/vybr-backend/internal/service"
)

type AuthHandler struct {
	auth   *service.AuthService
	tokens *service.TokenService
}

func NewAuthHandler(auth *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resendOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Registration successful. Please check your email for the verification code.",
		"email":   user.Email,
	})
}

func (h *AuthHandler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var req resendOtpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.auth.ResendOtp(r.Context(), req.Email); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent successfully",
	})
}

func (h *AuthHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req verifyOtpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.auth.VerifyOtp(r.Context(), req.Email, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	http.SetCookie(w, h.tokens.SessionCookie(token))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully",
		"user": userResponse{
			ID:         user.ID.String(),
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	http.SetCookie(w, h.tokens.SessionCookie(token))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user": userResponse{
			ID:         user.ID.String(),
			Email:      user.Email,
			IsVerified: user.IsVerified,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.tokens.ClearedCookie())
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}
