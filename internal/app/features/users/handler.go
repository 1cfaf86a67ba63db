package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	userstore "github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/app/system/authz"
	"github.com/krcapps/orderdash/internal/app/system/inputval"
	"github.com/krcapps/orderdash/internal/app/system/timeouts"
	"github.com/krcapps/orderdash/internal/domain/models"
)

type Handler struct {
	Users  *userstore.Directory
	Admin  userstore.AllowList
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(dir *userstore.Directory, admin userstore.AllowList, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: dir, Admin: admin, ErrLog: errLog, Log: logger}
}

// userView is the account shape sent to clients. The stored document
// carries the password hash; this type exists so it never leaves the
// server.
type userView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Division  string    `json:"division"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) view(u *models.User) userView {
	role := models.RoleUser
	if h.Admin.Contains(u.Email) {
		role = models.RoleAdmin
	}
	return userView{
		ID:        u.ID,
		Name:      u.Name,
		Division:  u.Division,
		Email:     u.Email,
		Status:    u.Status,
		Role:      role,
		CreatedAt: u.CreatedAt,
	}
}

// ServeList handles GET /users: every account except the requesting
// admin's own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user list")
	defer cancel()

	all, err := h.Users.ListOthers(ctx, me.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: list", err, "Unable to load users.")
		return
	}

	views := make([]userView, 0, len(all))
	for _, u := range all {
		views = append(views, h.view(u))
	}
	uierrors.WriteJSON(w, http.StatusOK, views)
}

// HandleApprove handles POST /users/{id}/approve. Approving twice is
// fine; the second call is a no-op.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user approve")
	defer cancel()

	if err := h.Users.Approve(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "User not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "users: approve", err, "Unable to approve user.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]string{"status": models.StatusApproved})
}

type updateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// HandleUpdate handles PATCH /users/{id}: admin edit of an account's
// email and/or password.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "users: decode update", err, "Invalid request body.")
		return
	}
	if req.Email == nil && req.Password == nil {
		h.ErrLog.LogBadRequest(w, r, "users: empty update", nil, "Nothing to update.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user update")
	defer cancel()

	if req.Email != nil {
		if verr := inputval.Email(*req.Email); verr != nil {
			h.ErrLog.LogValidation(w, r, verr)
			return
		}
		if err := h.Users.UpdateEmail(ctx, id, *req.Email); err != nil {
			switch {
			case errors.Is(err, userstore.ErrEmailExists):
				h.ErrLog.LogConflict(w, r, "Email is already in use.")
			case errors.Is(err, userstore.ErrNotFound):
				h.ErrLog.LogNotFound(w, r, "User not found.")
			default:
				h.ErrLog.LogServerError(w, r, "users: update email", err, "Unable to update user.")
			}
			return
		}
	}

	if req.Password != nil {
		if verr := inputval.Password(*req.Password); verr != nil {
			h.ErrLog.LogValidation(w, r, verr)
			return
		}
		if err := h.Users.UpdatePassword(ctx, id, *req.Password); err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				h.ErrLog.LogNotFound(w, r, "User not found.")
				return
			}
			h.ErrLog.LogServerError(w, r, "users: update password", err, "Unable to update user.")
			return
		}
	}

	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "users: reload after update", err, "Unable to update user.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, h.view(updated))
}

// HandleDelete handles DELETE /users/{id}. The credential lives in the
// account document and is removed with it. Admins cannot delete their
// own account from this endpoint.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, _, meID, _ := authz.UserCtx(r)
	if id == meID {
		h.ErrLog.LogBadRequest(w, r, "users: self delete", nil, "You cannot delete your own account.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user delete")
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "User not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "users: delete", err, "Unable to delete user.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
