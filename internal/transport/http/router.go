package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/underbyte/internal/transport/ws"
	"github.com/cwrk-planet/underbyte/pkg/httputil"
	"github.com/cwrk-planet/underbyte/pkg/metrics"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins []string
	UploadDir      string
	UploadPrefix   string // URL prefix the upload dir is served under
}

func NewRouter(h *Handler, wsServer *ws.Server, opts RouterOptions) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.UploadPrefix == "" {
		opts.UploadPrefix = "/uploads"
	}

	r := chi.NewRouter()
	r.Use(httputil.MiddlewareRequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httputil.MiddlewareLogging)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WS endpoint, outside the timeout group
	r.Get("/ws/{roomCode}/{username}", wsServer.HandleWS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	if opts.UploadDir != "" {
		fs := http.StripPrefix(opts.UploadPrefix+"/", http.FileServer(http.Dir(opts.UploadDir)))
		r.Handle(opts.UploadPrefix+"/*", fs)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Post("/upload", h.Upload)

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)

			rm.Route("/{code}", func(rr chi.Router) {
				rr.Get("/", h.GetRoom)
				rr.Delete("/", h.DeleteRoom)
				rr.Post("/join", h.JoinRoom)
				rr.Post("/messages", h.SendMessage)
				rr.Get("/messages", h.ListMessages)
			})
		})
	})

	return r
}
