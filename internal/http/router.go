package api

import (
	stdhttp "net/http"
	"time"

	intconfig "bookingflow/internal/config"
	h "bookingflow/internal/http/handlers"
	"bookingflow/internal/http/middleware"
	"bookingflow/internal/utils"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, sessions h.Sessions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().WithError(err).Warn("gagal mengatur trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route tidak ditemukan",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	secret := []byte(env.SessionTokenSecret)
	flows := h.FlowHandler{
		Sessions: sessions,
		Secret:   secret,
		TokenTTL: tokenTTL(env.SessionIdleTTL),
		OwnerTTL: ownerTTL(env.SessionRetention),
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health(sessions))

		flow := api.Group("/flow")
		flow.GET("/categories", h.Categories)
		flow.POST("/sessions", flows.CreateSession)

		session := flow.Group("/sessions/:id", middleware.FlowAuth(secret))
		mountFlowSession(session, flows)
	}

	return r
}

func mountFlowSession(g *gin.RouterGroup, flows h.FlowHandler) {
	g.GET("", flows.GetSession)
	g.DELETE("", flows.DeleteSession)
	g.POST("/category", flows.ChooseCategory)
	g.PATCH("/draft", flows.PatchDraft)
	g.POST("/seats/:seat", flows.ToggleSeat)
	g.PUT("/passengers/:seat", flows.SetPassenger)
	g.POST("/next", flows.Next)
	g.POST("/back", flows.Back)
	g.POST("/negotiation", flows.AgreePrice)
	g.POST("/submit", flows.Submit)
	g.POST("/contact", flows.ConfirmContact)
	g.POST("/payment/proof", flows.SubmitPaymentProof)
	g.POST("/payment/cash", flows.ConfirmCash)
	g.POST("/payment/refresh", flows.RefreshPayment)
	g.GET("/manifest", flows.Manifest)
	g.POST("/complete", flows.Complete)
}

// tokenTTL outlives the idle TTL so a token never expires before its flow.
func tokenTTL(idle time.Duration) time.Duration {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return 24*time.Hour + idle
}

// ownerTTL matches how long stored sessions are kept.
func ownerTTL(retention time.Duration) time.Duration {
	if retention <= 0 {
		return 7 * 24 * time.Hour
	}
	return retention
}
