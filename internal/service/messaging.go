package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"whatsapp-gpt-relay/internal/config"
	"whatsapp-gpt-relay/internal/model"
	"whatsapp-gpt-relay/pkg/logger"
)

// WhatsAppScheme is the channel-scheme prefix Twilio requires on WhatsApp addresses
const WhatsAppScheme = "whatsapp:"

// messageCreator is the part of the Twilio REST API used to send messages
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// MessagingService sends WhatsApp messages through the Twilio Messages API
type MessagingService struct {
	api    messageCreator
	from   string
	logger *logger.Logger
}

// NewMessagingService creates a new messaging service.
// The Twilio REST client is built once and shared by every request.
func NewMessagingService(cfg *config.TwilioConfig, log *logger.Logger) *MessagingService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newMessagingService(client.Api, cfg.WhatsAppNumber, log)
}

func newMessagingService(api messageCreator, from string, log *logger.Logger) *MessagingService {
	return &MessagingService{
		api:    api,
		from:   WhatsAppAddress(from),
		logger: log,
	}
}

// Sender returns the prefixed sender address used for every reply
func (s *MessagingService) Sender() string {
	return s.from
}

// SendMessage submits body to the recipient and returns the provider message SID.
// It returns once Twilio has accepted the message, not when it is delivered.
func (s *MessagingService) SendMessage(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	out := model.OutgoingMessage{From: s.from, To: to, Body: body}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(out.From)
	params.SetTo(out.To)
	params.SetBody(out.Body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	var sid, status string
	if resp != nil {
		if resp.Sid != nil {
			sid = *resp.Sid
		}
		if resp.Status != nil {
			status = *resp.Status
		}
	}

	s.logger.Debug("Message accepted by provider",
		"sid", sid,
		"status", status,
	)

	return sid, nil
}

// WhatsAppAddress applies the whatsapp: scheme to addr exactly once
func WhatsAppAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(strings.ToLower(addr), WhatsAppScheme) {
		return WhatsAppScheme + addr[len(WhatsAppScheme):]
	}
	return WhatsAppScheme + addr
}
