package submissions

import (
	"github.com/go-chi/chi/v5"

	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Any signed-in account can submit and see its own entries.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Get("/mine", h.ServeMine)
	})

	// The dashboard table, edits, deletion, and exports are admin only.
	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))
		ar.Get("/", h.ServeList)
		ar.Patch("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
		ar.Post("/delete", h.HandleBulkDelete)
		ar.Get("/export/csv", h.ServeExportCSV)
		ar.Get("/export/docx", h.ServeExportDocx)
	})

	return r
}
