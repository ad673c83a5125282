package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/tournament-portal/handlers"
	"github.com/Dosada05/tournament-portal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	RateLimiter    *middleware.IPRateLimiter
}

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Stage      *handlers.StageHandler
	Group      *handlers.GroupHandler
	Team       *handlers.TeamHandler
	Player     *handlers.PlayerHandler
	Match      *handlers.MatchHandler
	Standings  *handlers.StandingsHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.HealthHandler)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket живёт дольше таймаутов API, поэтому вне /api
	router.Route("/ws/standings", func(r chi.Router) {
		r.Get("/groups/{groupID}", h.WebSocket.GroupStandingsWs)
		r.Get("/tournaments/{tournamentID}", h.WebSocket.TournamentStandingsWs)
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		// Публичный портал
		r.Group(func(r chi.Router) {
			if opts.RateLimiter != nil {
				r.Use(opts.RateLimiter.Handler)
			}
			publicRoutes(r, h)
		})

		// Администрирование
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(middleware.RequireRole(middleware.RoleAdmin))
			adminRoutes(r, h)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}

func publicRoutes(r chi.Router, h Handlers) {
	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/standings", h.Standings.TournamentStandingsHandler)
	})

	r.Route("/stages/{stageID}", func(r chi.Router) {
		r.Get("/", h.Stage.GetByIDHandler)
		r.Get("/standings", h.Standings.StageStandingsHandler)
		r.Get("/standings/archive", h.Standings.GetArchiveHandler)
	})

	r.Route("/groups/{groupID}", func(r chi.Router) {
		r.Get("/", h.Group.GetByIDHandler)
		r.Get("/standings", h.Standings.GroupStandingsHandler)
	})

	r.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListTeams)
		r.Get("/{teamID}", h.Team.GetTeamByID)
	})

	r.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.ListPlayers)
		r.Get("/stats", h.Player.StatsHandler)
		r.Get("/{playerID}", h.Player.GetPlayerByID)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.ListHandler)
		r.Get("/{matchID}", h.Match.GetByIDHandler)
	})
}

func adminRoutes(r chi.Router, h Handlers) {
	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", h.Tournament.CreateHandler)
		r.Patch("/{tournamentID}", h.Tournament.UpdateHandler)
		r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
		r.Post("/{tournamentID}/stages", h.Tournament.CreateStageHandler)
	})

	r.Route("/stages/{stageID}", func(r chi.Router) {
		r.Patch("/", h.Stage.UpdateHandler)
		r.Delete("/", h.Stage.DeleteHandler)
		r.Post("/groups", h.Stage.CreateGroupHandler)
		r.Post("/standings/archive", h.Standings.ArchiveStageHandler)
		r.Delete("/standings/archive", h.Standings.DeleteArchiveHandler)
	})

	r.Route("/groups/{groupID}", func(r chi.Router) {
		r.Delete("/", h.Group.DeleteHandler)
		r.Put("/teams", h.Group.AssignTeamsHandler)
		r.Post("/fixtures", h.Group.GenerateFixturesHandler)
		r.Post("/standings/rebuild", h.Standings.RebuildGroupHandler)
	})

	r.Route("/teams", func(r chi.Router) {
		r.Post("/", h.Team.CreateTeam)
		r.Patch("/{teamID}", h.Team.UpdateTeam)
		r.Delete("/{teamID}", h.Team.DeleteTeam)
	})

	r.Route("/players", func(r chi.Router) {
		r.Post("/", h.Player.CreatePlayer)
		r.Patch("/{playerID}", h.Player.UpdatePlayer)
		r.Delete("/{playerID}", h.Player.DeletePlayer)
	})

	r.Route("/matches", func(r chi.Router) {
		r.Post("/", h.Match.CreateHandler)
		r.Patch("/{matchID}", h.Match.UpdateHandler)
		r.Delete("/{matchID}", h.Match.DeleteHandler)
		r.Patch("/{matchID}/result", h.Match.UpdateResultHandler)
		r.Put("/{matchID}/lineups/{teamID}", h.Match.ReplaceLineupHandler)
		r.Put("/{matchID}/stats", h.Match.UpsertStatsHandler)
	})
}
