package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/eprod/config"
	httpapi "github.com/GoSim-25-26J-441/eprod/internal/api/http"
	"github.com/GoSim-25-26J-441/eprod/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/eprod/internal/api/http/routes"
	authmw "github.com/GoSim-25-26J-441/eprod/internal/auth/middleware"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	DB             *pgxpool.Pool
	Redis          *redis.Client
	Auth           config.AuthConfig
	Firebase       authmw.IDTokenVerifier
	Logger         *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var dbPing, redisPing httpapi.Pinger
	if dep.DB != nil {
		dbPing = dep.DB
	}
	if dep.Redis != nil {
		redisPing = httpapi.PingFunc(func(ctx context.Context) error { return dep.Redis.Ping(ctx).Err() })
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dbPing, redisPing)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{
		DB:       dep.DB,
		Redis:    dep.Redis,
		Auth:     dep.Auth,
		Logger:   dep.Logger,
		Firebase: dep.Firebase,
	})

	return r
}
