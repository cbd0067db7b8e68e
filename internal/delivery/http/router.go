package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventpulse/internal/delivery/http/controllers"
	"eventpulse/internal/delivery/http/middleware"
	"eventpulse/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	dashboardController *controllers.DashboardController,
	registrationController *controllers.RegistrationController,
	generatorController *controllers.GeneratorController,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Users
	mux.HandleFunc("GET /users/me", requireAuth(userController.GetMe))
	mux.HandleFunc("PATCH /users/me", requireAuth(userController.UpdateMe))

	// Events
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/me", requireAuth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/slug/{slug}", eventController.GetEventBySlug)
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/generate", requireAuth(generatorController.GenerateEvent))

	// Dashboard: anonymous callers get a null payload, not a 401.
	mux.HandleFunc("GET /events/{eventID}/dashboard", optionalAuth(dashboardController.GetEventDashboard))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", registrationController.Register)
	mux.HandleFunc("GET /events/{eventID}/registrations", requireAuth(registrationController.ListRegistrations))
	mux.HandleFunc("POST /events/{eventID}/check-in", requireAuth(registrationController.CheckIn))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
