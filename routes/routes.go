package routes

import (
	"net/http"

	"github.com/Dosada05/fixture-engine/handlers"
	"github.com/Dosada05/fixture-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	fixtureHandler *handlers.FixtureHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Публичные маршруты для просмотра
	router.Get("/stages/{stageID}/matches", fixtureHandler.StageMatchesHandler)
	router.Get("/stages/{stageID}/standings", fixtureHandler.StandingsHandler)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	// Изменения только для организаторов
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(middleware.RoleOrganizer, middleware.RoleAdmin))

		r.Post("/tournaments/{tournamentID}/fixtures", fixtureHandler.GenerateHandler)
		r.Get("/stages/{stageID}/intake/validate", fixtureHandler.ValidateIntakeHandler)
		r.Post("/stages/{stageID}/reseed", matchHandler.ReseedHandler)
		r.Post("/matches/{matchID}/finish", matchHandler.FinishHandler)
		r.Post("/matches/{matchID}/progress", matchHandler.ProgressHandler)
	})
}
