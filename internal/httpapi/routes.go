package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mateus-s-a/jokenpo/internal/ws"
)

func SetupRoutes(gateway *ws.Gateway, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", gateway.Handler())
	r.Handle("/*", http.FileServer(http.Dir(staticDir)))
	return r
}
