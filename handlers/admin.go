package handlers

import (
	"game-site-backend/middleware"
	"game-site-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes wires the login flow and the session-guarded dashboard
// endpoints.
func SetupAdminRoutes(
	app *fiber.App,
	auth *services.AuthService,
	contact *services.ContactService,
	newsletter *services.NewsletterService,
	scores *services.ScoreService,
	leaderboard *services.LeaderboardService,
	events *services.EventService,
	export *services.ExportService,
) {
	// 🔓 Login/logout stay outside the guard
	app.Post("/admin/login", auth.LoginEndpoint)
	app.Post("/admin/logout", auth.LogoutEndpoint)

	// 🔒 Everything else under /admin requires a valid session
	admin := app.Group("/admin", middleware.SessionAuthMiddleware(auth))

	admin.Get("/contact-messages", contact.ListMessages)
	admin.Delete("/contact-messages/:id", contact.DeleteMessage)

	admin.Get("/newsletter-subscribers", newsletter.ListSubscribers)
	admin.Delete("/newsletter-subscribers/:id", newsletter.DeleteSubscriber)

	admin.Get("/scores", scores.ListScores)
	admin.Delete("/scores/:id", scores.DeleteScore)

	admin.Delete("/leaderboard/:id", leaderboard.DeleteEntry)

	admin.Post("/events", events.CreateEvent)
	admin.Delete("/events/:id", events.DeleteEvent)

	admin.Post("/export", export.ExportEndpoint)
}
