package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/loopmobile/loop-og/internal/logger"
	"github.com/loopmobile/loop-og/internal/metrics"
)

// Rendering and publishing a card is not cheap, so the endpoint sits
// behind a per-IP limiter: one request every 2 seconds with a small
// burst for crawlers re-fetching og tags.
const (
	rateLimitRPS   = 0.5
	rateLimitBurst = 3
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env, log *logger.Logger, m *metrics.Metrics, corsOrigin string) {
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(log))
	router.Use(SecurityHeaders())
	router.Use(m.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{corsOrigin},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "X-OG-Image-URL", "X-Request-ID"},
	}))

	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.Sweep()
		}
	}()

	api := router.Group("/api")
	{
		api.GET("/questions/preview", RateLimitMiddleware(limiter), env.GetQuestionPreview)
	}

	router.GET("/healthz", env.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
