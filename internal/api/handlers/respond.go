package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/logger"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the service error taxonomy onto transport codes.
// Messages stay generic where distinguishing failure modes would leak
// account or code state.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Invalid input data",
			"details": validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, "User already exists and is verified")
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrInvalidOrExpiredOtp):
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP code")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, domain.ErrNotVerified):
		writeError(w, http.StatusUnauthorized, "Please verify your email address before logging in")
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
	case errors.Is(err, domain.ErrMailDelivery):
		writeError(w, http.StatusInternalServerError, "Failed to send verification email")
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
