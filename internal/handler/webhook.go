package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"whatsapp-gpt-relay/internal/metrics"
	"whatsapp-gpt-relay/internal/middleware"
	"whatsapp-gpt-relay/internal/model"
	"whatsapp-gpt-relay/pkg/logger"
)

const (
	// maxBodyBytes caps the inbound webhook body
	maxBodyBytes = 1 << 20

	formContentType = "application/x-www-form-urlencoded"
)

// Pipeline stage errors. They only drive logging and metrics; the caller
// always sees the same generic acknowledgement.
var (
	ErrDecode     = errors.New("decode webhook body")
	ErrCompletion = errors.New("generate reply")
	ErrMessaging  = errors.New("send reply")
)

// Completer generates a reply for an inbound message text
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// Sender delivers a reply to a WhatsApp address
type Sender interface {
	SendMessage(ctx context.Context, to, body string) (string, error)
}

// WebhookHandler handles inbound Twilio WhatsApp webhooks
type WebhookHandler struct {
	completer Completer
	sender    Sender
	logger    *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(completer Completer, sender Sender, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		completer: completer,
		sender:    sender,
		logger:    log,
	}
}

// ReceiveMessage handles POST /api/whatsapp
func (h *WebhookHandler) ReceiveMessage(w http.ResponseWriter, r *http.Request) {
	log := h.logger
	if id := middleware.RequestID(r.Context()); id != "" {
		log = log.WithRequestID(id)
	}

	if err := h.relay(w, r, log); err != nil {
		log.WithError(err).Error("Error processing message")
		h.sendErrorResponse(w)
		return
	}

	metrics.WebhookRequests.WithLabelValues(metrics.OutcomeSent).Inc()
	h.sendSuccessResponse(w)
}

// relay runs decode -> complete -> send for one request
func (h *WebhookHandler) relay(w http.ResponseWriter, r *http.Request, log *logger.Logger) error {
	msg, err := decodeMessage(w, r)
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeDecodeError).Inc()
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	log = log.WithSender(msg.From)
	log.Info("Incoming WhatsApp message", "body_length", len(msg.Body))

	start := time.Now()
	reply, err := h.completer.Complete(r.Context(), msg.Body)
	metrics.UpstreamDuration.WithLabelValues(metrics.UpstreamCompletion).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeCompletionError).Inc()
		return fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	if reply == "" {
		metrics.CompletionFallbacks.Inc()
		reply = model.FallbackReply
	}

	start = time.Now()
	sid, err := h.sender.SendMessage(r.Context(), msg.From, reply)
	metrics.UpstreamDuration.WithLabelValues(metrics.UpstreamMessaging).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeMessagingError).Inc()
		return fmt.Errorf("%w: %w", ErrMessaging, err)
	}

	log.Info("Reply sent",
		"reply_length", len(reply),
		"sid", sid,
	)
	return nil
}

// decodeMessage reads the URL-encoded Twilio webhook body.
// A missing Content-Type is tolerated; any other type than a form is rejected.
func decodeMessage(w http.ResponseWriter, r *http.Request) (*model.IncomingMessage, error) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("invalid content type: %w", err)
		}
		if mediaType != formContentType {
			return nil, fmt.Errorf("unsupported content type %q", mediaType)
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return model.ParseIncomingMessage(body)
}

// sendSuccessResponse sends success response
func (h *WebhookHandler) sendSuccessResponse(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, model.WebhookResponse{Message: model.AckMessageSent})
}

// sendErrorResponse sends error response
func (h *WebhookHandler) sendErrorResponse(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, model.WebhookResponse{Message: model.AckError})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
