package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gobwas/ws"
	"go.uber.org/zap"

	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/hub"
	"github.com/shubham-shewale/crypto-ticker/cmd/gateway/internal/repository"
	"github.com/shubham-shewale/crypto-ticker/pkg/models"
)

// NewHandler routes /ws to the hub and serves the stored ticker at /api/ticker.
func NewHandler(h *hub.Hub, store repository.PriceStore, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			logger.Debug("Upgrade failed", zap.Error(err))
			return
		}
		NewClient(conn, h, logger).Start()
	})

	mux.HandleFunc("/api/ticker", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		updates, err := store.GetUpdates(r.Context(), h.Symbols())
		if err != nil {
			logger.Error("Ticker snapshot failed", zap.Error(err))
			http.Error(w, "snapshot unavailable", http.StatusServiceUnavailable)
			return
		}
		if updates == nil {
			updates = []models.TickerUpdate{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(updates); err != nil {
			logger.Debug("Write ticker response failed", zap.Error(err))
		}
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
