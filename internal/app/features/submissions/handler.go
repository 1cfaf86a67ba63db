package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	uierrors "github.com/krcapps/orderdash/internal/app/features/errors"
	"github.com/krcapps/orderdash/internal/app/export"
	submissionstore "github.com/krcapps/orderdash/internal/app/store/submissions"
	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/app/system/authz"
	"github.com/krcapps/orderdash/internal/app/system/inputval"
	"github.com/krcapps/orderdash/internal/app/system/timeouts"
	"github.com/krcapps/orderdash/internal/domain/models"
)

// maxUploadBytes caps a whole multipart submission: five maximum-size
// images plus form overhead.
const maxUploadBytes = int64(inputval.MaxImages*inputval.MaxImageSize) + 1<<20

type Handler struct {
	Repo   *submissionstore.Repository
	Users  *users.Directory
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(repo *submissionstore.Repository, dir *users.Directory, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Repo: repo, Users: dir, ErrLog: errLog, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| User endpoints                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleCreate handles POST /submissions: a multipart form with a
// "description" field and one to five "images" files.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.ErrLog.LogBadRequest(w, r, "submission: parse multipart", err, "Upload too large or malformed.")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "submission create")
	defer cancel()

	// The owner snapshot needs the division, which the session does
	// not carry.
	owner, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "submission: load owner", err, "Unable to submit.")
		return
	}

	uploads, closers, verr := collectUploads(r.MultipartForm.File["images"])
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	if verr != nil {
		h.ErrLog.LogValidation(w, r, verr)
		return
	}

	sub, err := h.Repo.Create(ctx, owner.ID, owner.Name, owner.Division,
		r.FormValue("description"), uploads)
	if err != nil {
		var ve *inputval.ValidationError
		if errors.As(err, &ve) {
			h.ErrLog.LogValidation(w, r, ve)
			return
		}
		h.ErrLog.LogServerError(w, r, "submission: create", err, "Unable to submit.")
		return
	}

	uierrors.WriteJSON(w, http.StatusCreated, sub)
}

// collectUploads turns multipart file headers into repository uploads.
// Per-file size and type limits are rechecked in the repository; this
// only surfaces obviously broken parts early.
func collectUploads(files []*multipart.FileHeader) ([]submissionstore.Upload, []multipart.File, *inputval.ValidationError) {
	if verr := inputval.ImageCount(len(files)); verr != nil {
		return nil, nil, verr
	}
	uploads := make([]submissionstore.Upload, 0, len(files))
	closers := make([]multipart.File, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, closers, inputval.Fail("images", "unreadable image upload")
		}
		closers = append(closers, f)
		uploads = append(uploads, submissionstore.Upload{
			Reader:      f,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
	}
	return uploads, closers, nil
}

// ServeMine handles GET /submissions/mine: the signed-in user's own
// submissions in insertion order.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, _ := authz.UserCtx(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "submission list mine")
	defer cancel()

	subs, err := h.Repo.ListByOwner(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "submission: list mine", err, "Unable to load submissions.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, subs)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Admin endpoints                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList handles GET /submissions for admins. Query parameters:
// q (substring filter), from/to (YYYY-MM-DD, inclusive), sort
// (name|division|description|timestamp), dir (asc|desc).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "submission list")
	defer cancel()

	subs, err := h.Repo.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "submission: list all", err, "Unable to load submissions.")
		return
	}

	view, verr := applyView(subs, r)
	if verr != nil {
		h.ErrLog.LogValidation(w, r, verr)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, view)
}

func applyView(subs []*models.Submission, r *http.Request) ([]*models.Submission, *inputval.ValidationError) {
	q := r.URL.Query()

	dr, verr := parseDateRange(q.Get("from"), q.Get("to"))
	if verr != nil {
		return nil, verr
	}
	view := submissionstore.Filter(subs, q.Get("q"), dr)
	if key := q.Get("sort"); key != "" {
		view = submissionstore.Sort(view, key, q.Get("dir"))
	}
	return view, nil
}

func parseDateRange(from, to string) (submissionstore.DateRange, *inputval.ValidationError) {
	var dr submissionstore.DateRange
	var err error
	if from != "" {
		if dr.From, err = time.Parse("2006-01-02", from); err != nil {
			return dr, inputval.Fail("from", "dates must be YYYY-MM-DD")
		}
	}
	if to != "" {
		if dr.To, err = time.Parse("2006-01-02", to); err != nil {
			return dr, inputval.Fail("to", "dates must be YYYY-MM-DD")
		}
	}
	return dr, nil
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// HandleUpdate handles PATCH /submissions/{id}: admin edit of the
// owner-editable subset.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "submission: decode update", err, "Invalid request body.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submission update")
	defer cancel()

	patch := submissionstore.UpdatePatch{UserName: req.Name, Description: req.Description}
	if err := h.Repo.Update(ctx, id, patch); err != nil {
		var ve *inputval.ValidationError
		switch {
		case errors.As(err, &ve):
			h.ErrLog.LogValidation(w, r, ve)
		case errors.Is(err, submissionstore.ErrNotFound):
			h.ErrLog.LogNotFound(w, r, "Submission not found.")
		default:
			h.ErrLog.LogServerError(w, r, "submission: update", err, "Unable to update submission.")
		}
		return
	}

	updated, err := h.Repo.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "submission: reload after update", err, "Unable to update submission.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /submissions/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submission delete")
	defer cancel()

	if err := h.Repo.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "submission: delete", err, "Unable to delete submission.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// HandleBulkDelete handles POST /submissions/delete with a list of ids.
func (h *Handler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "submission: decode bulk delete", err, "Invalid request body.")
		return
	}
	if len(req.IDs) == 0 {
		h.ErrLog.LogBadRequest(w, r, "submission: empty bulk delete", nil, "No ids given.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "submission bulk delete")
	defer cancel()

	if err := h.Repo.Delete(ctx, req.IDs...); err != nil {
		h.ErrLog.LogServerError(w, r, "submission: bulk delete", err, "Unable to delete submissions.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"status": "deleted", "count": len(req.IDs)})
}

// ServeExportCSV handles GET /submissions/export/csv. The same filter
// and sort parameters as the list view apply, so the download matches
// what the admin sees.
func (h *Handler) ServeExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "submission CSV export")
	defer cancel()

	view, ok := h.exportView(ctx, w, r)
	if !ok {
		return
	}

	data, err := export.ToCSV(view)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export: csv", err, "Unable to export.")
		return
	}
	// UTF-8 BOM so Excel opens the download with the right encoding.
	serveDownload(w, export.CSVFilename(time.Now()), "text/csv; charset=utf-8",
		append([]byte("\xEF\xBB\xBF"), data...))
}

// ServeExportDocx handles GET /submissions/export/docx.
func (h *Handler) ServeExportDocx(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "submission Word export")
	defer cancel()

	view, ok := h.exportView(ctx, w, r)
	if !ok {
		return
	}

	data, err := export.ToDocx(ctx, view, h.Repo.Blobs(), h.Log)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export: docx", err, "Unable to export.")
		return
	}
	serveDownload(w, export.DocFilename(time.Now()),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
}

func (h *Handler) exportView(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]*models.Submission, bool) {
	subs, err := h.Repo.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export: list submissions", err, "Unable to export.")
		return nil, false
	}
	view, verr := applyView(subs, r)
	if verr != nil {
		h.ErrLog.LogValidation(w, r, verr)
		return nil, false
	}
	return view, true
}

func serveDownload(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, _ = w.Write(data)
}
