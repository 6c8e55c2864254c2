package errormgr

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/pipeline"
	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
	"github.com/todd-jang/swap-reporting-mvp/pkg/middleware"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

// Handler provides the error manager's HTTP endpoints. Operator mutations
// (status updates, retries) require a bearer token when a verifier is
// configured; the reporting and read endpoints stay open to the pipeline.
type Handler struct {
	sys    System
	pages  pagination.Config
	auth   func(http.Handler) http.Handler
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system, pagination config,
// token verifier, and logger.
func NewHandler(sys System, pages pagination.Config, verifier middleware.TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		pages:  pages,
		auth:   middleware.Authenticate(verifier),
		logger: logger.With("handler", "errormgr"),
	}
}

// Routes returns the route group for the error manager endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/report_error", Handler: h.Report},
			{Method: "GET", Pattern: "/errors", Handler: h.List},
			{Method: "GET", Pattern: "/errors/{id}", Handler: h.Get},
			{Method: "PUT", Pattern: "/errors/{id}/status", Handler: h.secured(h.SetStatus)},
			{Method: "POST", Pattern: "/errors/{id}/retry", Handler: h.secured(h.Retry)},
		},
	}
}

func (h *Handler) secured(fn http.HandlerFunc) http.HandlerFunc {
	wrapped := h.auth(fn)
	return func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r)
	}
}

// Report files a batch of failure reports from a pipeline stage.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var reports []pipeline.ErrorReport
	if err := handlers.DecodeJSON(r, &reports); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidReport)
		return
	}

	result, err := h.sys.Report(r.Context(), reports)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List returns a filtered page of error entries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter := FilterFromQuery(values)
	page := pagination.FromQuery(values, h.pages)

	result, err := h.sys.List(r.Context(), filter, page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get returns one error entry by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	entry, err := h.sys.Get(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

type statusRequest struct {
	Status string `json:"status"`
}

// SetStatus applies an operator's triage decision to an entry.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var req statusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	status, err := ParseEntryStatus(req.Status)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidStatus)
		return
	}

	entry, err := h.sys.SetStatus(r.Context(), id, status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

// Retry replays an entry into the stage that can reprocess it.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	result, err := h.sys.Retry(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
