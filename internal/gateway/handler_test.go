package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lira-chatbot/internal/catalog"
	"lira-chatbot/internal/common/config"
	"lira-chatbot/internal/common/logger"
	"lira-chatbot/internal/model"
	"lira-chatbot/internal/session"
)

// fakeModel records every Send and replies with canned text. One fakeModel is
// shared across requests so the test can observe the accumulated calls.
type fakeModel struct {
	replies []string
	sendErr error

	calls     []sentCall
	lastTemps []float64
}

type sentCall struct {
	text string
}

func (f *fakeModel) Open(history []session.Turn) model.Conversation {
	contents := make([]session.Turn, len(history))
	copy(contents, history)
	return &fakeConversation{parent: f, history: contents}
}

type fakeConversation struct {
	parent  *fakeModel
	history []session.Turn
}

func (c *fakeConversation) Send(ctx context.Context, text string, cfg model.GenerationConfig) (string, error) {
	c.parent.calls = append(c.parent.calls, sentCall{text: text})
	c.parent.lastTemps = append(c.parent.lastTemps, cfg.Temperature)
	if c.parent.sendErr != nil {
		return "", c.parent.sendErr
	}
	reply := "ok"
	if n := len(c.parent.replies); n > 0 {
		reply = c.parent.replies[0]
		if n > 1 {
			c.parent.replies = c.parent.replies[1:]
		}
	}
	c.history = append(c.history, session.NewTurn(session.RoleUser, text))
	c.history = append(c.history, session.NewTurn(session.RoleModel, reply))
	return reply, nil
}

func (c *fakeConversation) History() []session.Turn {
	return c.history
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Brands: []catalog.Brand{
		{BrandName: "Lira", Products: []catalog.Product{{Name: "Glow Serum"}}},
	}}
}

func testGenAIConfig() config.GenAIConfig {
	return config.GenAIConfig{
		Model:           "gemini-2.5-flash",
		Timeout:         1000,
		Temperature:     0.4,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 512,
	}
}

func newTestRouter(t *testing.T, fm *fakeModel, store session.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(store, fm, testCatalog(), "Est. 1999.", testGenAIConfig(),
		"test", nil, logger.NewTestLogger(t), nil)

	engine := gin.New()
	RegisterRoutes(engine, h, CookieConfig{Name: "chat_session", Secret: "test-secret", TTL: 0})
	return engine
}

func postChat(t *testing.T, engine *gin.Engine, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, ChatResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestChatEmptyMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing message", body: `{}`},
		{name: "empty message", body: `{"message": ""}`},
		{name: "whitespace only", body: `{"message": "   \n\t "}`},
		{name: "malformed body", body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := &fakeModel{}
			engine := newTestRouter(t, fm, session.NewMemoryStore())

			w, resp := postChat(t, engine, tt.body, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Please ask a question!", resp.Reply)
			assert.Empty(t, fm.calls, "model must not be called for empty input")
		})
	}
}

func TestChatSystemInstructionSentOnce(t *testing.T) {
	fm := &fakeModel{replies: []string{"noted", "hello there", "second answer"}}
	store := session.NewMemoryStore()
	engine := newTestRouter(t, fm, store)

	w, resp := postChat(t, engine, `{"message": "hi"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello there", resp.Reply)

	// First exchange: instruction turn plus user turn.
	require.Len(t, fm.calls, 2)
	assert.Contains(t, fm.calls[0].text, "Lira Cosmetics Ltd.")
	assert.Equal(t, "hi", fm.calls[1].text)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w2, resp2 := postChat(t, engine, `{"message": "and again"}`, cookies)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "second answer", resp2.Reply)

	// Second exchange: only the user turn goes out.
	require.Len(t, fm.calls, 3)
	assert.Equal(t, "and again", fm.calls[2].text)
}

func TestChatModelFailureFallsBack(t *testing.T) {
	fm := &fakeModel{sendErr: errors.New("upstream unavailable")}
	store := session.NewMemoryStore()
	engine := newTestRouter(t, fm, store)

	// Seed a session with existing history so we can verify it survives.
	seeded := session.New()
	seeded.EnsureSystemInstruction("ctx")
	seeded.MarkSystemSent()
	seeded.ReplaceHistory([]session.Turn{
		session.NewTurn(session.RoleUser, "earlier question"),
		session.NewTurn(session.RoleModel, "earlier answer"),
	})
	require.NoError(t, store.Put(context.Background(), "fixed-id", seeded))

	cookie := &http.Cookie{Name: "chat_session", Value: signSessionID("fixed-id", "test-secret")}
	w, resp := postChat(t, engine, `{"message": "does this work"}`, []*http.Cookie{cookie})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "I'm having trouble answering right now. Please try again.", resp.Reply)

	after, err := store.Get(context.Background(), "fixed-id")
	require.NoError(t, err)
	assert.Len(t, after.History, 2, "failed exchange must not touch stored history")
	assert.Equal(t, "earlier question", after.History[0].Parts[0].Text)
}

func TestChatHistoryRoundTrip(t *testing.T) {
	fm := &fakeModel{replies: []string{"noted", "answer one", "answer two"}}
	store := session.NewMemoryStore()
	engine := newTestRouter(t, fm, store)

	w, _ := postChat(t, engine, `{"message": "first"}`, nil)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	postChat(t, engine, `{"message": "second"}`, cookies)

	id, ok := verifySessionID(cookies[0].Value, "test-secret")
	require.True(t, ok)

	sess, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, sess.SystemSent)

	// instruction + reply, first + reply, second + reply.
	require.Len(t, sess.History, 6)
	assert.Equal(t, session.RoleUser, sess.History[2].Role)
	assert.Equal(t, "first", sess.History[2].Parts[0].Text)
	assert.Equal(t, "answer one", sess.History[3].Parts[0].Text)
	assert.Equal(t, "second", sess.History[4].Parts[0].Text)
	assert.Equal(t, "answer two", sess.History[5].Parts[0].Text)
}

func TestChatTemperatureOverride(t *testing.T) {
	fm := &fakeModel{replies: []string{"noted", "reply"}}
	engine := newTestRouter(t, fm, session.NewMemoryStore())

	_, resp := postChat(t, engine, `{"message": "hot take", "temperature": 0.9}`, nil)
	assert.Equal(t, "reply", resp.Reply)

	require.NotEmpty(t, fm.lastTemps)
	assert.InDelta(t, 0.9, fm.lastTemps[len(fm.lastTemps)-1], 1e-9)
}

func TestChatDefaultTemperature(t *testing.T) {
	fm := &fakeModel{replies: []string{"noted", "reply"}}
	engine := newTestRouter(t, fm, session.NewMemoryStore())

	postChat(t, engine, `{"message": "plain"}`, nil)

	require.NotEmpty(t, fm.lastTemps)
	assert.InDelta(t, 0.4, fm.lastTemps[len(fm.lastTemps)-1], 1e-9)
}

func TestHomeAndHealthz(t *testing.T) {
	engine := newTestRouter(t, &fakeModel{}, session.NewMemoryStore())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "lira-chatbot", status.Service)

	w2 := httptest.NewRecorder()
	engine.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestHealthzDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(session.NewMemoryStore(), &fakeModel{}, testCatalog(), "", testGenAIConfig(),
		"test", nil, logger.NewTestLogger(t), func(ctx context.Context) error {
			return errors.New("redis down")
		})

	engine := gin.New()
	RegisterRoutes(engine, h, CookieConfig{Name: "chat_session", Secret: "s", TTL: 0})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionCookieTamperedIsReissued(t *testing.T) {
	fm := &fakeModel{replies: []string{"noted", "reply"}}
	engine := newTestRouter(t, fm, session.NewMemoryStore())

	forged := &http.Cookie{Name: "chat_session", Value: "someid.deadbeef"}
	w, _ := postChat(t, engine, `{"message": "hi"}`, []*http.Cookie{forged})

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "tampered cookie must be replaced")
	id, ok := verifySessionID(cookies[0].Value, "test-secret")
	require.True(t, ok)
	assert.NotEqual(t, "someid", id)
}
