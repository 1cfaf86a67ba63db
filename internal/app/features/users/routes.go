package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))
		ar.Get("/", h.ServeList)
		ar.Post("/{id}/approve", h.HandleApprove)
		ar.Patch("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
