package api

import (
	"net/http"
	"time"

	"codeclash/internal/api/handler"
	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common/security"
	"codeclash/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
)

type Services struct {
	Auth        *service.AuthService
	User        *service.UserService
	Problem     *service.ProblemService
	Contest     *service.ContestService
	Team        *service.TeamService
	Submission  *service.SubmissionService
	Execution   *service.ExecutionService
	Review      *service.ReviewService
	Participant *service.ParticipantService
	Chat        *service.ChatService
	Admin       *service.AdminService
}

func NewRouter(services Services, proxyLimiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AppConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Group(func(public chi.Router) {
			handler.NewAuthHandler(services.Auth).RegisterRoutes(public)
		})

		v1.Route("/users", handler.NewUserHandler(services.User).RegisterRoutes)
		v1.Route("/problems", handler.NewProblemHandler(services.Problem).RegisterRoutes)
		v1.Route("/contests", handler.NewContestHandler(services.Contest).RegisterRoutes)
		v1.Route("/teams", handler.NewTeamHandler(services.Team, services.User).RegisterRoutes)
		v1.Route("/submissions", handler.NewSubmissionHandler(services.Submission, services.User).RegisterRoutes)
		v1.Route("/contestSubmissions", handler.NewContestSubmissionHandler(services.Submission, services.User).RegisterRoutes)
		v1.Route("/contestParticipants", handler.NewParticipantHandler(services.Participant, services.User).RegisterRoutes)
		v1.Route("/reviews", handler.NewReviewHandler(services.Review, services.User).RegisterRoutes)
		v1.Route("/admin", handler.NewAdminHandler(services.Admin).RegisterRoutes)

		// Metered upstream proxies sit behind the shared rate limiter.
		v1.Route("/run-code", func(run chi.Router) {
			run.Use(middleware.Authenticator)
			run.Use(proxyLimiter.Limit)
			handler.NewExecutionHandler(services.Execution).RegisterRoutes(run)
		})
		v1.Route("/ai-agent", func(agent chi.Router) {
			agent.Use(middleware.Authenticator)
			agent.Use(proxyLimiter.Limit)
			handler.NewChatHandler(services.Chat).RegisterRoutes(agent)
		})
	})

	return r
}
