package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/common"
	"github.com/dmitrijs2005/checkpay/internal/logging"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if !r.decodeJSON(w, req, &body) {
		return
	}

	res, err := r.auth.Login(req.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			logging.FromContext(req.Context(), r.logger).Info(req.Context(), "login rejected", "username", body.Username)
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logging.FromContext(req.Context(), r.logger).Error(req.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		UserID:      res.Username,
		Username:    res.Username,
		ExpiresAt:   res.ExpiresAt.UTC(),
	})
}

// decodeJSON reads at most maxRequestBytes into v. On failure it writes the
// response and returns false.
func (r *Router) decodeJSON(w http.ResponseWriter, req *http.Request, v any) bool {
	if r.maxRequestBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, r.maxRequestBytes)
	}
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
