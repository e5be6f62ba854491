package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"batilink/internal/access"
	"batilink/internal/config"
	"batilink/internal/handler"
	"batilink/internal/middleware"
	"batilink/internal/model"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Project      *handler.ProjectHandler
	Task         *handler.TaskHandler
	Estimate     *handler.EstimateHandler
	Invoice      *handler.InvoiceHandler
	Profession   *handler.ProfessionHandler
	Profile      *handler.ProfileHandler
	Address      *handler.AddressHandler
	Notification *handler.NotificationHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	lookup access.OwnerLookup,
	h Handlers,
	health http.HandlerFunc,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", health)

	// Declarative route policies. Each route names the roles that may
	// call it and, when ownership applies, the resource fields that make
	// the caller an owner. Admin passes everything.
	var (
		adminOnly  = middleware.Authorize(access.RequireRoles(model.RoleAdmin))
		customers  = middleware.Authorize(access.RequireRoles(model.RoleCustomer))
		entreprise = middleware.Authorize(access.RequireRoles(model.RoleEntreprise))
		parties    = middleware.Authorize(access.RequireRoles(model.RoleCustomer, model.RoleEntreprise))

		selfOrAdmin = middleware.Authorize(access.NewResourceGate(access.Policy{
			AllowOwner: true,
			Resource:   access.ResourceUser,
		}, lookup))

		projectOwnerOrAdmin = middleware.Authorize(access.NewResourceGate(access.Policy{
			AllowOwner:  true,
			OwnerParam:  "id",
			OwnerFields: []string{access.FieldCustomerID, access.FieldEntrepriseID},
			Resource:    access.ResourceProject,
		}, lookup))

		taskOwnerOrAdmin = middleware.Authorize(access.NewResourceGate(access.Policy{
			AllowOwner:  true,
			OwnerParam:  "id",
			OwnerFields: []string{access.FieldUserID},
			Resource:    access.ResourceTask,
		}, lookup))

		addressOwnerOrAdmin = middleware.Authorize(access.NewResourceGate(access.Policy{
			AllowOwner:  true,
			OwnerParam:  "id",
			OwnerFields: []string{access.FieldUserID},
			Resource:    access.ResourceAddress,
		}, lookup))
	)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(authMiddleware.Authenticate)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/signup", h.Auth.Signup)
			auth.Post("/signup-entreprise", h.Auth.SignupEntreprise)
			auth.Post("/signin", h.Auth.Signin)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.Post("/logout", h.Auth.Logout)
			auth.With(middleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(middleware.RequireAuth)
			users.With(adminOnly).Get("/", h.User.List)
			users.With(adminOnly).Post("/", h.User.Create)
			users.With(selfOrAdmin).Get("/{id}", h.User.Get)
			users.With(selfOrAdmin).Delete("/{id}", h.User.Delete)
		})

		api.Route("/projects", func(projects chi.Router) {
			projects.Use(middleware.RequireAuth)
			projects.With(adminOnly).Get("/", h.Project.List)
			projects.With(customers).Post("/", h.Project.Create)
			projects.With(entreprise).Get("/search", h.Project.Search)
			projects.Get("/mine", h.Project.Mine)
			projects.With(projectOwnerOrAdmin).Get("/{id}", h.Project.Get)
			projects.With(projectOwnerOrAdmin).Patch("/{id}", h.Project.Update)
			projects.With(entreprise).Post("/{id}/accept", h.Project.Accept)
			projects.With(projectOwnerOrAdmin).Delete("/{id}", h.Project.Delete)
			projects.With(projectOwnerOrAdmin).Get("/{id}/tasks", h.Task.ListByProject)
			projects.With(projectOwnerOrAdmin).Post("/{id}/tasks", h.Task.Create)
		})

		api.Route("/tasks", func(tasks chi.Router) {
			tasks.Use(middleware.RequireAuth)
			tasks.With(taskOwnerOrAdmin).Get("/{id}", h.Task.Get)
			tasks.With(taskOwnerOrAdmin).Patch("/{id}", h.Task.Update)
			tasks.With(taskOwnerOrAdmin).Delete("/{id}", h.Task.Delete)
			tasks.With(taskOwnerOrAdmin).Get("/{id}/professions", h.Task.Professions)
			tasks.With(taskOwnerOrAdmin).Post("/{id}/professions/{professionID}", h.Task.AttachProfession)
			tasks.With(taskOwnerOrAdmin).Delete("/{id}/professions/{professionID}", h.Task.DetachProfession)
		})

		api.Route("/estimates", func(estimates chi.Router) {
			estimates.Use(middleware.RequireAuth)
			estimates.With(adminOnly).Get("/", h.Estimate.List)
			estimates.With(entreprise).Post("/", h.Estimate.Create)
			estimates.With(entreprise).Post("/with-lines", h.Estimate.CreateWithLines)
			estimates.With(parties).Get("/{id}", h.Estimate.Get)
			estimates.With(parties).Patch("/{id}", h.Estimate.Update)
			estimates.With(entreprise).Delete("/{id}", h.Estimate.Delete)
			estimates.With(entreprise).Post("/{id}/lines", h.Estimate.AddLine)
			estimates.With(entreprise).Patch("/{id}/lines/{lineID}", h.Estimate.UpdateLine)
			estimates.With(entreprise).Delete("/{id}/lines/{lineID}", h.Estimate.DeleteLine)
		})

		api.Route("/invoices", func(invoices chi.Router) {
			invoices.Use(middleware.RequireAuth)
			invoices.With(adminOnly).Get("/", h.Invoice.List)
			invoices.With(entreprise).Post("/", h.Invoice.Create)
			invoices.With(parties).Get("/{id}", h.Invoice.Get)
			invoices.With(entreprise).Patch("/{id}", h.Invoice.Update)
			invoices.With(adminOnly).Delete("/{id}", h.Invoice.Delete)
		})

		api.Route("/professions", func(professions chi.Router) {
			professions.Get("/", h.Profession.List)
			professions.Get("/{id}", h.Profession.Get)
			professions.With(middleware.RequireAuth, adminOnly).Post("/", h.Profession.Create)
			professions.With(middleware.RequireAuth, adminOnly).Patch("/{id}", h.Profession.Update)
			professions.With(middleware.RequireAuth, adminOnly).Delete("/{id}", h.Profession.Delete)
		})

		api.Route("/profile", func(profile chi.Router) {
			profile.Use(middleware.RequireAuth)
			profile.Get("/", h.Profile.Mine)
			profile.Patch("/", h.Profile.Update)
			profile.Post("/professions/{professionID}", h.Profile.AttachProfession)
			profile.Delete("/professions/{professionID}", h.Profile.DetachProfession)
		})

		api.Route("/addresses", func(addresses chi.Router) {
			addresses.Use(middleware.RequireAuth)
			addresses.With(adminOnly).Get("/", h.Address.List)
			addresses.Post("/", h.Address.Create)
			addresses.With(addressOwnerOrAdmin).Get("/{id}", h.Address.Get)
			addresses.With(addressOwnerOrAdmin).Patch("/{id}", h.Address.Update)
			addresses.With(adminOnly).Delete("/{id}", h.Address.Delete)
		})

		api.Route("/notifications", func(notifications chi.Router) {
			notifications.Use(middleware.RequireAuth)
			notifications.With(adminOnly).Post("/", h.Notification.Create)
			notifications.Get("/", h.Notification.Mine)
			notifications.Post("/{id}/read", h.Notification.MarkRead)
			notifications.Delete("/{id}", h.Notification.Delete)
		})
	})

	return r
}
