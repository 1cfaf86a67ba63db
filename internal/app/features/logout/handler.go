package logout

import (
	"net/http"

	"go.uber.org/zap"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	"github.com/krcapps/orderdash/internal/app/system/auth"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// HandleLogout handles POST /logout. Signing out when already signed
// out still succeeds; the client only cares that the cookie is gone.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clear session", zap.Error(err))
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}
