package validation

import (
	"log/slog"
	"net/http"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

// Handler provides the validation stage's HTTP endpoints.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "validation"),
	}
}

// Routes returns the route group for the validation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/validate", Handler: h.Validate},
			{Method: "GET", Pattern: "/outcomes/{uti}", Handler: h.History},
		},
	}
}

// Validate accepts an array of canonical records and evaluates them.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var batch []records.CanonicalRecord
	if err := handlers.DecodeJSON(r, &batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBatch)
		return
	}

	result, err := h.sys.Validate(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// History returns the recorded validation passes for one transaction
// identifier, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.sys.History(r.Context(), r.PathValue("uti"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, outcomes)
}
