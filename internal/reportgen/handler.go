package reportgen

import (
	"log/slog"
	"net/http"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
	"github.com/todd-jang/swap-reporting-mvp/pkg/pagination"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

// Handler provides the report generation stage's HTTP endpoints.
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
		logger: logger.With("handler", "reportgen"),
	}
}

// Routes returns the route group for the report generation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/generate-report", Handler: h.Generate},
			{Method: "GET", Pattern: "/reports", Handler: h.List},
		},
	}
}

// Generate accepts an array of valid canonical records and formats them
// into a report artifact.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var batch []records.CanonicalRecord
	if err := handlers.DecodeJSON(r, &batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBatch)
		return
	}

	result, err := h.sys.Generate(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// List returns a filtered page of report artifact descriptors.
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
