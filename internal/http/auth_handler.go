package httpapi

import (
	"errors"
	"net/http"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/domain"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"

	"go.uber.org/zap"
)

// AuthHandler 后台登录
type AuthHandler struct {
	auth   *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login POST /auth/api/v1/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid request body"))
		return
	}
	if req.Account == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Fail("account and password are required"))
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Account, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, Fail("invalid account or password"))
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"token":   token,
		"user_id": user.UserID,
		"account": user.Account,
		"role":    user.Role,
	}))
}
