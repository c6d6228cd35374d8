package handlers

import (
	"game-site-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SetupSiteRoutes wires the public endpoints used by the marketing site.
func SetupSiteRoutes(
	app *fiber.App,
	ranking *services.RankingService,
	leaderboard *services.LeaderboardService,
	contact *services.ContactService,
	newsletter *services.NewsletterService,
	scores *services.ScoreService,
	events *services.EventService,
) {
	// 🔓 Public reads
	app.Get("/rankings", ranking.GetRankings)
	app.Get("/leaderboard", leaderboard.GetLeaderboard)
	app.Get("/leaderboard/status", leaderboard.StatusEndpoint)
	app.Get("/events", events.ListEvents)

	// 🔓 Public writes (site forms and score submission)
	app.Post("/contact", contact.SubmitMessage)
	app.Post("/newsletter/subscribe", newsletter.Subscribe)
	app.Post("/scores", scores.SubmitScore)

	// Recomputation is idempotent, so it stays outside the admin guard
	app.Post("/leaderboard/update", leaderboard.UpdateEndpoint)
}
