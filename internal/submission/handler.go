package submission

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

// Handler provides the submission stage's HTTP endpoints.
type Handler struct {
	sys    System
	pages  pagination.Config
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system, pagination config,
// and logger.
func NewHandler(sys System, pages pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		pages:  pages,
		logger: logger.With("handler", "submission"),
	}
}

// Routes returns the route group for the submission endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/submit-report", Handler: h.Submit},
			{Method: "GET", Pattern: "/submissions", Handler: h.List},
		},
	}
}

type submitRequest struct {
	ReportID uuid.UUID `json:"report_id"`
}

// Submit transmits the identified report artifact to the SDR.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil || req.ReportID == uuid.Nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Submit(r.Context(), req.ReportID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List returns a filtered page of submission attempts.
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
