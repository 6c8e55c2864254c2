package normalization

import (
	"log/slog"
	"net/http"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

// Handler provides the normalization stage's HTTP endpoints.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "normalization"),
	}
}

// Routes returns the route group for the normalization endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/process", Handler: h.Process},
			{Method: "GET", Pattern: "/records/{uti}", Handler: h.Lookup},
		},
	}
}

// Process accepts an array of raw trades and canonicalizes them.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var batch []records.RawTrade
	if err := handlers.DecodeJSON(r, &batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBatch)
		return
	}

	result, err := h.sys.Process(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Lookup returns the canonical record for one transaction identifier.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sys.Lookup(r.Context(), r.PathValue("uti"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}
