package model

import (
	"fmt"
	"net/url"
)

// Acknowledgement texts returned to the webhook caller
const (
	AckMessageSent = "Message sent!"
	AckError       = "Error processing the message"
)

// FallbackReply is sent when the completion service returns no usable text
const FallbackReply = "Sorry, I could not process that."

// IncomingMessage represents a WhatsApp message delivered by the Twilio webhook
type IncomingMessage struct {
	Body string `json:"Body"`
	From string `json:"From"`
}

// OutgoingMessage represents the reply submitted to the messaging provider
type OutgoingMessage struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// WebhookResponse represents the acknowledgement returned to the webhook caller
type WebhookResponse struct {
	Message string `json:"message"`
}

// ParseForm decodes a URL-encoded webhook body into field name -> value.
// Repeated keys keep their last value.
func ParseForm(raw []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}

	fields := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		fields[key] = vals[len(vals)-1]
	}
	return fields, nil
}

// ParseIncomingMessage decodes a URL-encoded webhook body into an IncomingMessage
func ParseIncomingMessage(raw []byte) (*IncomingMessage, error) {
	fields, err := ParseForm(raw)
	if err != nil {
		return nil, err
	}
	return &IncomingMessage{
		Body: fields["Body"],
		From: fields["From"],
	}, nil
}
