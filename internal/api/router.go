package api

import (
	"net/http"
	"time"

	"cp_tracker/internal/api/handler"
	"cp_tracker/internal/api/middleware"
	"cp_tracker/internal/app/service"
	"cp_tracker/internal/common/security"
	"cp_tracker/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type Services struct {
	Auth        *service.AuthService
	Problems    *service.ProblemService
	Submissions *service.SubmissionService
	Sync        *service.SyncService
	Leaderboard *service.LeaderboardService
	Judge       service.Judge
}

func NewRouter(log *zap.Logger, sessions repository.SessionRepository, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	// sync waits on the judge's rate limiter, keep this well above its timeout
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Looks for "Authorization: Bearer T" and puts the verified token in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Auth, svc.Leaderboard, svc.Sync, svc.Judge)
	problemHandler := handler.NewProblemHandler(svc.Problems, svc.Submissions)
	leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboard)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterRoutes(auth)
			auth.Group(func(loggedIn chi.Router) {
				loggedIn.Use(middleware.Authenticator(sessions))
				authHandler.RegisterSessionRoutes(loggedIn)
			})
		})

		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(middleware.Authenticator(sessions))
			loggedIn.Route("/me", userHandler.RegisterRoutes)
			loggedIn.Route("/problems", problemHandler.RegisterRoutes)
			loggedIn.Route("/leaderboard", leaderboardHandler.RegisterRoutes)
		})
	})

	return r
}
