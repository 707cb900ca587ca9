package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/brigade/pkg/app"
	"github.com/ghuser/brigade/pkg/auth"
	"github.com/ghuser/brigade/pkg/config"
	"github.com/ghuser/brigade/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/brigade/services/inventory/application/services"
)

// InventoryRoutes registers the session endpoints and the authenticated
// inventory endpoints on r.
func InventoryRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	opts := handlers.Options{Production: a.Config != nil && a.Config.Environment == config.EnvProduction}

	if a.SessionStore != nil {
		sh := handlers.NewSessionHandler(svcs, a.SessionStore, opts)
		r.Post("/session", sh.Start)
		r.Delete("/session", sh.End)
	}

	r.Group(func(r chi.Router) {
		if a.SessionStore != nil {
			r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
		}
		Mount(r, svcs, opts)
	})
}

// Mount registers the inventory endpoints under /inventory without any
// authentication middleware.
func Mount(r chi.Router, svcs *appsvcs.Services, opts handlers.Options) {
	r.Route("/inventory", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Post("/", handlers.NewPostItemHandler(svcs, opts).Execute)
			r.Get("/", handlers.NewListItemsHandler(svcs, opts).Execute)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.NewGetItemHandler(svcs, opts).Execute)
				r.Delete("/", handlers.NewDeleteItemHandler(svcs, opts).Execute)
				r.Get("/movements", handlers.NewItemMovementsHandler(svcs, opts).Execute)
				r.Get("/assignments", handlers.NewItemAssignmentsHandler(svcs, opts).Execute)
				r.Get("/reconciliation", handlers.NewReconciliationHandler(svcs, opts).Execute)
				r.Post("/stock", handlers.NewPostStockHandler(svcs, opts).Execute)
			})
		})
		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", handlers.NewPostAssignmentHandler(svcs, opts).Execute)
			r.Post("/{id}/returns", handlers.NewPostReturnHandler(svcs, opts).Execute)
			r.Post("/{id}/write-off", handlers.NewPostWriteOffHandler(svcs, opts).Execute)
		})
		r.Get("/persons/{id}/assignments", handlers.NewPersonAssignmentsHandler(svcs, opts).Execute)
	})
}
