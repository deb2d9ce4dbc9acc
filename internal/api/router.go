package api

import (
	"net/http"
	"time"

	"algoprep/internal/api/handler"
	"algoprep/internal/app/service"
	"algoprep/internal/common/security"
	"algoprep/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type Services struct {
	Auth     *service.AuthService
	Category *service.CategoryService
	Problem  *service.ProblemService
	Solved   *service.SolvedService
	Run      *service.RunService
}

func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	// Synchronous runs wait on the judge, so the timeout stays generous.
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Looks for "Authorization: Bearer T" and stores the verified token in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", handler.NewAuthHandler(svc.Auth).RegisterRoutes)
		v1.Route("/categories", handler.NewCategoryHandler(svc.Category).RegisterRoutes)
		v1.Route("/problems", handler.NewProblemHandler(svc.Problem).RegisterRoutes)
		v1.Route("/solved", handler.NewSolvedHandler(svc.Solved).RegisterRoutes)
		v1.Route("/run", handler.NewRunHandler(svc.Run).RegisterRoutes)
	})

	return r
}
