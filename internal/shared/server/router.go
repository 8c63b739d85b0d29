package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contract-backend/internal/answers"
	"contract-backend/internal/audit"
	"contract-backend/internal/documents"
	"contract-backend/internal/extraction"
	"contract-backend/internal/services/health"
	"contract-backend/internal/shared/config"
	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/server/middleware"
	"contract-backend/internal/shared/server/respond"
	"contract-backend/internal/webhooks"
)

// RouterDeps carries the handlers registered on the engine. Nil handlers are
// skipped.
type RouterDeps struct {
	Config            config.Config
	Metrics           *metrics.Collector
	DocumentHandler   *documents.Handler
	ExtractionHandler *extraction.Handler
	AnswerHandler     *answers.Handler
	AuditHandler      *audit.Handler
	WebhookHandler    *webhooks.Handler
	Now               func() time.Time
}

var pipelineRoutes = map[string]bool{
	"/extract":      true,
	"/ask":          true,
	"/ask/stream":   true,
	"/audit":        true,
	"/audit/batch":  true,
	"/audit/export": true,
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	healthSvc := health.NewService(cfg.Version, deps.Now)

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(rateLimitConfig(cfg)),
	)

	r.GET("/", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"service": "contract-backend",
			"version": cfg.Version,
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	root := &r.RouterGroup
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(root)
	}
	if deps.ExtractionHandler != nil {
		deps.ExtractionHandler.RegisterRoutes(root)
	}
	if deps.AnswerHandler != nil {
		deps.AnswerHandler.RegisterRoutes(root)
	}
	if deps.AuditHandler != nil {
		deps.AuditHandler.RegisterRoutes(root)
	}
	if deps.WebhookHandler != nil {
		deps.WebhookHandler.RegisterRoutes(root)
	}

	return r
}

func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	burst := cfg.RateLimitBurst
	pipelineBurst := burst / 4
	if pipelineBurst < 1 {
		pipelineBurst = 1
	}
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			middleware.DefaultRateLimitGroup:  {Rate: cfg.RateLimitRPS * 4, Burst: burst * 4},
			middleware.PipelineRateLimitGroup: {Rate: cfg.RateLimitRPS, Burst: pipelineBurst},
		},
		GroupFor: func(c *gin.Context) string {
			if pipelineRoutes[c.FullPath()] {
				return middleware.PipelineRateLimitGroup
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
