package login

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	"github.com/krcapps/orderdash/internal/app/identity"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/app/system/timeouts"
)

type Handler struct {
	Identity   *identity.Service
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(svc *identity.Service, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Identity: svc, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is what the client needs to render its shell: who is
// signed in and as what. The password hash never appears here.
type sessionResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "login: decode body", err, "Invalid request body.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Identity.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrPendingApproval):
			// The account exists but an admin has not approved it yet.
			h.ErrLog.LogForbidden(w, r, "Your account is awaiting admin approval.")
		case errors.Is(err, identity.ErrInvalidCredentials):
			h.ErrLog.LogUnauthorized(w, r, "Invalid email or password.")
		default:
			h.ErrLog.LogServerError(w, r, "login: authenticate", err, "Unable to sign in.")
		}
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u); err != nil {
		h.ErrLog.LogServerError(w, r, "login: establish session", err, "Unable to sign in.")
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, sessionResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
	})
}

// ServeSession handles GET /login/session: the client calls it on page
// load to restore its auth state from the cookie.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		h.ErrLog.LogUnauthorized(w, r, "Not signed in.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, sessionResponse{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
	})
}
