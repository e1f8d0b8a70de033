// internal/gateway/routes.go
package gateway

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the chat API on the engine. The session cookie
// middleware only guards /chat; the probes stay cookie-free.
func RegisterRoutes(engine *gin.Engine, h *Handler, cookie CookieConfig) {
	engine.Use(CORSMiddleware())

	engine.GET("/", h.Home)
	engine.GET("/healthz", h.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/chat", SessionCookie(cookie), h.Chat)
}
