package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Data-Dreamersambit/Audio-Player/internal/handlers"
	"github.com/Data-Dreamersambit/Audio-Player/internal/middleware"
)

// Register wires the HTTP surface. Engagement mutations sit behind the
// auth middleware; listing and single-audio reads are public.
func Register(app *fiber.App, audio *handlers.AudioHandler, auth *handlers.AuthHandler, jwtSecret string, limiter *middleware.RateLimiter) {
	requireAuth := middleware.RequireAuth(jwtSecret)

	api := app.Group("/api")

	audios := api.Group("/audios")
	audios.Get("/", audio.List)
	audios.Post("/", requireAuth, audio.Upload)
	audios.Get("/:audioId", audio.Get)
	audios.Put("/:audioId/like", requireAuth, audio.ToggleLike)
	audios.Put("/:audioId/bookmark", requireAuth, audio.ToggleBookmark)
	audios.Put("/:audioId/viewed", requireAuth, audio.RecordView)
	audios.Post("/:audioId/comment", requireAuth, audio.AddComment)

	api.Get("/search", audio.Search)

	users := api.Group("/users")
	users.Post("/signup", limiter.MiddlewareByKey(middleware.ByIP), auth.Signup)
	users.Post("/login", limiter.MiddlewareByKey(middleware.ByIP), auth.Login)
	users.Post("/logout", requireAuth, auth.Logout)
	users.Get("/authenticate", requireAuth, auth.Authenticate)
	users.Put("/:id", requireAuth, auth.Update)
	users.Delete("/:id", requireAuth, auth.Delete)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
}
