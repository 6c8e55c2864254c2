package service

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/todd-jang/swap-reporting-mvp/internal/infrastructure"
	"github.com/todd-jang/swap-reporting-mvp/pkg/handlers"
)

// healthHandler reports the service's own status plus backing-store
// connectivity. Dependency checks run concurrently; any failure degrades
// the response to 503.
func healthHandler(infra *infrastructure.Infrastructure) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := map[string]string{"status": "ok"}
		dbStatus := "ok"
		storageStatus := ""

		g, ctx := errgroup.WithContext(r.Context())

		g.Go(func() error {
			if err := infra.Database.Ping(ctx); err != nil {
				dbStatus = "error: " + err.Error()
			}
			return nil
		})

		if infra.Storage != nil {
			storageStatus = "ok"
			g.Go(func() error {
				if _, err := infra.Storage.Exists(ctx, "healthcheck"); err != nil {
					storageStatus = "error: " + err.Error()
				}
				return nil
			})
		}

		g.Wait()

		report["database"] = dbStatus
		if storageStatus != "" {
			report["storage"] = storageStatus
		}

		status := http.StatusOK
		if dbStatus != "ok" || (storageStatus != "" && storageStatus != "ok") {
			report["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		handlers.RespondJSON(w, status, report)
	}
}
