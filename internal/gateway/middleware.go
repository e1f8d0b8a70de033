// internal/gateway/middleware.go
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lira-chatbot/internal/common/metrics"
)

const sessionContextKey = "chat.sessionID"

// CookieConfig holds the session cookie settings.
type CookieConfig struct {
	Name   string
	Secret string
	TTL    time.Duration
}

// SessionCookie resolves the client's session identifier from a signed
// cookie, issuing a fresh one when the cookie is absent or tampered with.
// The cookie carries only an opaque uuid; session contents stay server-side.
func SessionCookie(cfg CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if raw, err := c.Cookie(cfg.Name); err == nil {
			if v, ok := verifySessionID(raw, cfg.Secret); ok {
				id = v
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.Name, signSessionID(id, cfg.Secret), int(cfg.TTL.Seconds()), "/", "", false, true)
			metrics.SessionsCreated.Inc()
		}
		c.Set(sessionContextKey, id)
		c.Next()
	}
}

// SessionID returns the session identifier resolved by SessionCookie.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}

func signSessionID(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return id + "." + hex.EncodeToString(mac.Sum(nil))
}

func verifySessionID(raw, secret string) (string, bool) {
	id, sig, ok := strings.Cut(raw, ".")
	if !ok || id == "" {
		return "", false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}
	return id, true
}

// CORSMiddleware adds CORS headers to allow browser chat widgets
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
