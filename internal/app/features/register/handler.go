package register

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/inputval"
	"github.com/krcapps/orderdash/internal/app/system/timeouts"
)

type Handler struct {
	Users  *users.Directory
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(dir *users.Directory, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: dir, ErrLog: errLog, Log: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Division string `json:"division"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HandleRegister handles POST /register. New accounts always start
// pending; the response makes that explicit so the client can tell
// the user to wait for approval.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "register: decode body", err, "Invalid request body.")
		return
	}

	if verr := inputval.Registration(req.Name, req.Division, req.Email, req.Password); verr != nil {
		h.ErrLog.LogValidation(w, r, verr)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register")
	defer cancel()

	u, err := h.Users.Register(ctx, req.Name, req.Division, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailExists) {
			h.ErrLog.LogConflict(w, r, "Email is already registered.")
			return
		}
		h.ErrLog.LogServerError(w, r, "register: create user", err, "Unable to register.")
		return
	}

	uierrors.WriteJSON(w, http.StatusCreated, registerResponse{ID: u.ID, Status: u.Status})
}
