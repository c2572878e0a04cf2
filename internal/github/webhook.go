package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/user/ghrelay/internal/config"
	"github.com/user/ghrelay/pkg/logger"
)

// WebhookHandler handles incoming GitHub webhooks. Accepted events are
// classified, formatted, and handed to the dispatch channel; the HTTP
// response never waits on Telegram delivery.
type WebhookHandler struct {
	secret   string
	flags    config.NotifyConfig
	eventsCh chan<- *Notification
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(secret string, flags config.NotifyConfig, eventsCh chan<- *Notification) *WebhookHandler {
	return &WebhookHandler{
		secret:   secret,
		flags:    flags,
		eventsCh: eventsCh,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read webhook body")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to read body"})
		return
	}
	defer r.Body.Close()

	if !VerifySignature(h.secret, body, r.Header.Get("X-Hub-Signature-256")) {
		logger.Warn().Msg("Invalid webhook signature")
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid signature"})
		return
	}

	if !json.Valid(body) {
		logger.Error().Msg("Invalid JSON in webhook body")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if note := ClassifyEvent(eventType, body, h.flags); note != nil {
		select {
		case h.eventsCh <- note:
			logger.Info().
				Str("type", eventType).
				Str("repo", note.RepoOwner+"/"+note.RepoName).
				Msg("Webhook event accepted")
		default:
			logger.Warn().Msg("Event channel full, dropping event")
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// VerifySignature checks a GitHub webhook signature header against the shared
// secret. An empty secret disables verification; a missing or malformed
// header fails it. The comparison is constant time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		logger.Warn().Msg("No webhook secret configured, skipping signature verification")
		return true
	}

	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}

	sig, err := hex.DecodeString(signature[7:])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hmac.Equal(sig, mac.Sum(nil))
}

// HealthHandler reports service liveness.
func HealthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": service})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to write JSON response")
	}
}
