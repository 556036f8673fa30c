package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shuttlenet/racquet-rankings/handlers"
	"github.com/shuttlenet/racquet-rankings/middleware"
)

// SetupRoutes mounts the rankings API. The recalculation triggers mutate
// ranking state and are restricted to organizers; everything else is a
// public read.
func SetupRoutes(
	router *chi.Mux,
	rankingHandler *handlers.RankingHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret []byte,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/rankings", func(r chi.Router) {
		r.Get("/global", rankingHandler.GlobalRankings)
		r.Get("/category/{category}", rankingHandler.CategoryRankings)
		r.Get("/player/{playerID}", rankingHandler.PlayerRankings)
		r.Get("/player/{playerID}/history", rankingHandler.PlayerHistory)
		r.Get("/tournament/{tournamentID}", rankingHandler.TournamentResults)
		r.Get("/points-config", rankingHandler.PointTable)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.RequireRole("organizer", "admin"))

			r.Post("/calculate/{tournamentID}", rankingHandler.Calculate)
			r.Post("/recalculate/all", rankingHandler.RecalculateAll)
		})
	})

	router.Get("/ws/rankings/{category}", webSocketHandler.ServeRankings)
}
