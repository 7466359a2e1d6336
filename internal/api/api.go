package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/TripShare-io/tripshare/internal/auth"
	"github.com/TripShare-io/tripshare/internal/config"
	"github.com/TripShare-io/tripshare/internal/storage"
	"github.com/TripShare-io/tripshare/internal/store"
)

type Api struct {
	Config config.Config
	Router *chi.Mux

	store  *store.Store
	tokens *auth.TokenManager
	images storage.ImageStorage
}

func NewApi(cfg config.Config, st *store.Store, tokens *auth.TokenManager, images storage.ImageStorage) (*Api, error) {
	api := &Api{
		Config: cfg,
		Router: chi.NewRouter(),
		store:  st,
		tokens: tokens,
		images: images,
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Heartbeat("/heartbeat"))

	// Public routes
	r.Post("/auth/register", api.RegisterHandler)
	r.Post("/auth/login", api.LoginHandler)
	r.Get("/auth/check-email/{email}", api.CheckEmailHandler)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(api.TokenAuthMiddleware)

		r.Get("/vacations", api.ListVacationsHandler)
		r.Get("/vacations/{id}", api.GetVacationHandler)
		r.Post("/vacations/{id}/follow", api.FollowVacationHandler)
		r.Delete("/vacations/{id}/follow", api.UnfollowVacationHandler)

		// Admin routes. RequireAdmin assumes TokenAuthMiddleware ran first.
		r.Group(func(r chi.Router) {
			r.Use(api.RequireAdmin)

			r.Post("/vacations", api.CreateVacationHandler)
			r.Put("/vacations/{id}", api.UpdateVacationHandler)
			r.Delete("/vacations/{id}", api.DeleteVacationHandler)
			r.Get("/vacations/report", api.FollowerReportHandler)
			r.Get("/vacations/csv", api.FollowerReportCSVHandler)
		})
	})

	// Uploaded images are served statically when stored on local disk.
	if ls, ok := api.images.(*storage.LocalStorage); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(ls.Dir()))))
	}
}

func (api *Api) Serve() {
	addr := fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort)
	log.Printf("Starting API server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, api.Router))
}
