package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KarthikRajS32/vsurvey/internal/docstore"
	"github.com/KarthikRajS32/vsurvey/internal/identity"
	"github.com/KarthikRajS32/vsurvey/internal/observability/metrics"
)

// TokenVerifier checks a bearer token passed outside the auth
// middleware (websocket clients send it as a query parameter).
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (*identity.Claims, error)
}

// FeedSubscriber delivers raw feed payloads for a pub/sub channel
type FeedSubscriber interface {
	SubscribeMessages(ctx context.Context, channel string) (<-chan string, func() error)
}

// FeedHandler streams survey responses to WebSocket clients as they
// are submitted. Each submission is published by the response
// repository; this handler relays the payloads for one survey.
type FeedHandler struct {
	verifier       TokenVerifier
	clients        ScopeResolver
	feed           FeedSubscriber
	allowedOrigins []string
	logger         *slog.Logger
}

// NewFeedHandler creates a new live response feed handler
func NewFeedHandler(verifier TokenVerifier, clients ScopeResolver, feed FeedSubscriber, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		verifier:       verifier,
		clients:        clients,
		feed:           feed,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *FeedHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/responses/{survey_id}?token= requests
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("survey_id")
	if surveyID == "" {
		writeError(w, http.StatusBadRequest, "survey_id required")
		return
	}

	// Browsers cannot set headers on websocket dials, so the token
	// rides in the query string.
	claims, err := h.verifier.VerifyToken(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.logger.Warn("feed token rejected", slog.String("error", err.Error()))
		writeError(w, http.StatusForbidden, "invalid or expired token")
		return
	}

	_, scope, err := h.clients.GetByEmail(r.Context(), callerClientEmail(claims))
	if err != nil {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	metrics.FeedOpened()
	defer metrics.FeedClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	channel := docstore.ResponsesChannel(scope, surveyID)
	payloads, closeSub := h.feed.SubscribeMessages(ctx, channel)
	defer closeSub()

	h.logger.Debug("response feed opened",
		slog.String("survey_id", surveyID),
		slog.String("caller", claims.Email))

	// Reader goroutine: its only job is to notice the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-payloads:
			if !ok {
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				h.logger.Debug("response feed write failed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
