package ingestion

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/todd-jang/swap-reporting-mvp/internal/records"
	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
	"github.com/todd-jang/swap-reporting-mvp/pkg/routes"
)

// Handler provides the ingestion gateway's HTTP endpoints.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "ingestion"),
	}
}

// Routes returns the route group for the ingestion endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/ingest", Handler: h.Ingest},
			{Method: "GET", Pattern: "/records/{id}", Handler: h.Get},
		},
	}
}

// Ingest accepts an array of raw trades, persists them, and forwards the
// batch to normalization.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var batch []records.RawTrade
	if err := handlers.DecodeJSON(r, &batch); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBatch)
		return
	}

	result, err := h.sys.Ingest(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Get returns one stored raw record by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rec, err := h.sys.Get(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}
