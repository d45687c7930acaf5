package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/config"
	authhttp "github.com/GoSim-25-26J-441/eprod/internal/auth/http"
	authmw "github.com/GoSim-25-26J-441/eprod/internal/auth/middleware"
	authrepo "github.com/GoSim-25-26J-441/eprod/internal/auth/repository"
	authsvc "github.com/GoSim-25-26J-441/eprod/internal/auth/service"
	projectshttp "github.com/GoSim-25-26J-441/eprod/internal/projects/http"
	projectsrepo "github.com/GoSim-25-26J-441/eprod/internal/projects/repository"
	projectssvc "github.com/GoSim-25-26J-441/eprod/internal/projects/service"
)

type V1Deps struct {
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Auth   config.AuthConfig
	Logger *zap.Logger
	// Firebase is optional. When set, Firebase ID tokens are accepted
	// after opaque session tokens.
	Firebase authmw.IDTokenVerifier
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	userRepo := authrepo.NewUserRepository(dep.DB)
	sessionRepo := authrepo.NewSessionRepository(dep.Redis)
	authService := authsvc.NewAuthService(userRepo, sessionRepo, authsvc.Options{
		SessionTTL:          dep.Auth.SessionTTL,
		MinPasswordLength:   dep.Auth.MinPasswordLength,
		RequireConfirmation: dep.Auth.RequireConfirmation,
		Logger:              dep.Logger,
	})

	verifiers := []authmw.TokenVerifier{authService}
	if dep.Firebase != nil {
		verifiers = append(verifiers, authmw.NewFirebaseVerifier(dep.Firebase, userRepo))
	}
	requireAuth := authmw.Authenticate(dep.Logger, verifiers...)
	limit := authmw.RateLimit(authmw.NewKeyedLimiter(dep.Auth.SignInRatePerMinute))

	authhttp.New(authService, dep.Logger).Register(api.Group("/auth"), requireAuth, limit)

	projectService := projectssvc.NewProjectService(projectsrepo.NewProjectRepository(dep.DB), dep.Logger)
	projectsGroup := api.Group("/projects", requireAuth)
	projectshttp.New(projectService, dep.Logger).Register(projectsGroup)
}
