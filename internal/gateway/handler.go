// internal/gateway/handler.go
package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"lira-chatbot/internal/catalog"
	"lira-chatbot/internal/common/config"
	"lira-chatbot/internal/common/logger"
	"lira-chatbot/internal/common/metrics"
	"lira-chatbot/internal/common/observability"
	"lira-chatbot/internal/model"
	"lira-chatbot/internal/prompt"
	"lira-chatbot/internal/session"
)

const (
	emptyMessageReply = "Please ask a question!"
	fallbackReply     = "I'm having trouble answering right now. Please try again."
)

// Handler serves the chat API. It orchestrates the session store and the
// model client per request; the catalog and article are frozen at boot, so
// the system instruction is computed at most once per process.
type Handler struct {
	store   session.Store
	models  model.Client
	catalog *catalog.Catalog
	article string
	cfg     config.GenAIConfig
	version string
	obs     *observability.Observability
	logger  logger.Logger
	ready   func(ctx context.Context) error

	once           sync.Once
	sysInstruction string
}

// NewHandler wires the gateway dependencies. ready is an optional dependency
// probe used by /healthz; obs may be nil.
func NewHandler(
	store session.Store,
	models model.Client,
	cat *catalog.Catalog,
	article string,
	cfg config.GenAIConfig,
	version string,
	obs *observability.Observability,
	log logger.Logger,
	ready func(ctx context.Context) error,
) *Handler {
	return &Handler{
		store:   store,
		models:  models,
		catalog: cat,
		article: article,
		cfg:     cfg,
		version: version,
		obs:     obs,
		logger:  log.With(map[string]interface{}{"component": "gateway"}),
		ready:   ready,
	}
}

// systemInstruction renders the one-time context message lazily. The source
// data never changes after boot, so one computation serves every session.
func (h *Handler) systemInstruction() string {
	h.once.Do(func() {
		rendered := prompt.RenderProducts(prompt.Flatten(h.catalog))
		h.sysInstruction = prompt.BuildSystemInstruction(h.article, rendered)
	})
	return h.sysInstruction
}

// Home returns the liveness payload.
func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:  "ok",
		Service: "lira-chatbot",
		Version: h.version,
	})
}

// Healthz checks downstream dependencies.
func (h *Handler) Healthz(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "degraded", Service: "lira-chatbot"})
			return
		}
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", Service: "lira-chatbot"})
}

// Chat handles one question/answer exchange. Every outcome is HTTP 200: the
// chat widget has no error path, so failures must stay conversational.
func (h *Handler) Chat(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()

	var req ChatRequest
	// Tolerate malformed bodies the same way as a missing message.
	_ = c.ShouldBindJSON(&req)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.recordOutcome(ctx, "empty", start)
		c.JSON(http.StatusOK, ChatResponse{Reply: emptyMessageReply})
		return
	}

	sessionID := SessionID(c)
	log := h.logger.With(map[string]interface{}{"sessionID": sessionID})

	sess, err := h.store.Get(ctx, sessionID)
	if err != nil {
		log.WithError(err).Error("session load failed", nil)
		h.recordOutcome(ctx, "fallback", start)
		c.JSON(http.StatusOK, ChatResponse{Reply: fallbackReply})
		return
	}

	sess.EnsureSystemInstruction(h.systemInstruction())

	genCfg := model.GenerationConfig{
		Temperature:     h.cfg.Temperature,
		TopP:            h.cfg.TopP,
		TopK:            h.cfg.TopK,
		MaxOutputTokens: h.cfg.MaxOutputTokens,
	}
	if req.Temperature != nil {
		genCfg.Temperature = *req.Temperature
	}

	callCtx, cancel := context.WithTimeout(ctx, config.GetDuration(h.cfg.Timeout))
	defer cancel()

	conv := h.models.Open(sess.History)

	// The system instruction goes out once per session as its own turn; its
	// reply enters the history but never the user-visible output.
	if !sess.SystemSent {
		if _, err := h.timedSend(callCtx, conv, sess.SystemInstruction, genCfg); err != nil {
			log.WithError(err).Error("system instruction send failed", nil)
			h.recordOutcome(ctx, "fallback", start)
			c.JSON(http.StatusOK, ChatResponse{Reply: fallbackReply})
			return
		}
		sess.MarkSystemSent()
	}

	reply, err := h.timedSend(callCtx, conv, message, genCfg)
	if err != nil {
		log.WithError(err).Error("model call failed", nil)
		h.recordOutcome(ctx, "fallback", start)
		c.JSON(http.StatusOK, ChatResponse{Reply: fallbackReply})
		return
	}

	sess.ReplaceHistory(conv.History())
	if err := h.store.Put(ctx, sessionID, sess); err != nil {
		log.WithError(err).Error("session save failed", nil)
		h.recordOutcome(ctx, "fallback", start)
		c.JSON(http.StatusOK, ChatResponse{Reply: fallbackReply})
		return
	}

	h.recordOutcome(ctx, "ok", start)
	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

func (h *Handler) timedSend(ctx context.Context, conv model.Conversation, text string, cfg model.GenerationConfig) (string, error) {
	start := time.Now()
	reply, err := conv.Send(ctx, text, cfg)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ModelCallsTotal.WithLabelValues(status).Inc()
	metrics.ModelCallDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return reply, err
}

func (h *Handler) recordOutcome(ctx context.Context, outcome string, start time.Time) {
	metrics.ChatRequestsTotal.WithLabelValues(outcome).Inc()
	if h.obs != nil {
		h.obs.RecordRequest(ctx, outcome)
		h.obs.RecordRequestDuration(ctx, time.Since(start), outcome)
	}
}
