// Package httpapi is the JSON-over-HTTP front end of the document store,
// used by browser clients and by the CLI when no gRPC endpoint is set.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/mandaditos/internal/common"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/server/services"
)

func New(documents services.DocumentService, auth services.AuthService, allowedOrigins []string, logger logging.Logger) http.Handler {
	h := &Handler{documents: documents, auth: auth, logger: logger.With("module", "http_server")}

	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route(common.APIPathPrefix+"/v1", func(r chi.Router) {
		r.Use(noStore)

		r.Post("/login", h.login)
		r.Get("/ping", h.ping)

		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Use(h.requireToken)
			r.Use(middleware.AllowContentType("application/json"))
			h.Routes(r)
		})
	})

	return router
}
