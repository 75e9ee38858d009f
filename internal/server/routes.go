package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/nesthost/internal/api/v1"
	"github.com/gosuda/nesthost/internal/api/ws"
)

func registerAuthRoutes(api huma.API, store v1.DataStore, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, store, authSvc)
}

func registerAPIRoutes(api huma.API, store v1.DataStore, authSvc v1.AuthService, hub *ws.Hub) {
	v1.RegisterProductRoutes(api, store, hub)
	v1.RegisterAccountRoutes(api, store, authSvc)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/products", hub.ServeProducts)
}
