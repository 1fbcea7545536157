// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers.
package routes

import (
	"bastion/internal/handlers"
	"bastion/internal/repositories"
	"bastion/internal/services/analytics"
	"bastion/internal/services/claim"
	"bastion/internal/services/customer"
	"bastion/internal/services/riskcache"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes.
// The risk cache and scorer are constructed in main so the cache warm-up can
// be started before the server accepts traffic.
func SetupRoutes(app *fiber.App, riskCache *riskcache.Service, scorer claim.Scorer) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(repositories.DB, repositories.CacheService)
	claimRepo := repositories.NewClaimRepository(repositories.DB, repositories.CacheService)
	storeRepo := repositories.NewStoreRepository(repositories.DB)

	// Initialize services
	claimService := claim.NewService(claimRepo, userRepo, storeRepo, scorer, riskCache)
	customerService := customer.NewService(userRepo, claimRepo)
	analyticsService := analytics.NewService(claimRepo, userRepo)

	// Initialize handlers
	claimHandler := handlers.NewClaimHandler(claimService)
	riskHandler := handlers.NewRiskHandler(riskCache, claimService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	storeHandler := handlers.NewStoreHandler(storeRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api/v1")

	// Customers
	api.Post("/customers/register", customerHandler.Register)
	api.Get("/customers/:id", customerHandler.GetCustomer)
	api.Get("/customers/:id/claims", claimHandler.GetUserClaims)
	api.Get("/customers/:id/risk", riskHandler.GetUserRisk)

	// Claims
	api.Post("/claims/submit", claimHandler.SubmitClaim)
	api.Get("/claims/:id", claimHandler.GetClaim)
	api.Patch("/claims/:id/status", claimHandler.UpdateClaimStatus)

	// On-demand fraud analysis
	api.Post("/fraud/analyze", riskHandler.Analyze)

	// Stores
	api.Post("/stores", storeHandler.CreateStore)
	api.Get("/stores", storeHandler.ListStores)
	api.Get("/stores/:id", storeHandler.GetStore)

	// Admin
	admin := api.Group("/admin")
	admin.Get("/users", customerHandler.ListCustomers)
	admin.Get("/risk-cache/stats", riskHandler.CacheStats)
	admin.Get("/analytics/dashboard", analyticsHandler.Dashboard)
	admin.Get("/analytics/top-categories", analyticsHandler.TopCategories)
}
