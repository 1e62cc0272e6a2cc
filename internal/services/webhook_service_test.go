package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
)

func newWebhook() (*pipeline, *WebhookService) {
	p := newPipeline()
	conversations := NewConversationService(p.conversations)
	chatbot := NewChatbotService(nil, p.leads, p.projects, p.conversations)
	svc := NewWebhookService(p.leads, p.events, conversations, chatbot, p.eventService, p.dispatcher)
	return p, svc
}

func incomingMessage(id, from, body string) whatsapp.WebhookEvent {
	return whatsapp.WebhookEvent{
		Type: whatsapp.EventTypeMessage,
		Data: whatsapp.WebhookData{
			ID:        id,
			From:      from,
			Body:      body,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

func TestWebhookIncomingMessage(t *testing.T) {
	p, svc := newWebhook()
	lead := p.addLead(nil)

	svc.HandleEvent(context.Background(), incomingMessage("wamid-in-1", "5511987654321@c.us", "bom dia"))

	// Conversation and lead event both recorded.
	require.Len(t, p.conversations.conversations, 1)
	conv := p.conversations.conversations[0]
	assert.Equal(t, lead.ID, conv.LeadID)
	assert.Equal(t, models.DirectionIncoming, conv.Direction)

	require.Len(t, p.events.events, 1)
	assert.Equal(t, models.EventTypeWhatsAppMessage, p.events.events[0].EventType)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	p, svc := newWebhook()
	p.addLead(nil)

	event := incomingMessage("wamid-dup", "5511987654321", "oi")
	svc.HandleEvent(context.Background(), event)
	svc.HandleEvent(context.Background(), event)

	assert.Len(t, p.conversations.conversations, 1)
	assert.Len(t, p.events.events, 1)
}

func TestWebhookUnknownPhoneDropped(t *testing.T) {
	p, svc := newWebhook()

	svc.HandleEvent(context.Background(), incomingMessage("wamid-x", "5599111122233", "oi"))

	assert.Empty(t, p.conversations.conversations)
	assert.Empty(t, p.events.events)
}

func TestWebhookChatbotAutoReply(t *testing.T) {
	p, svc := newWebhook()
	project := p.projects.add(&models.Project{Name: "Aurora", Price: float64Ptr(400000)})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())

	svc.HandleEvent(context.Background(), incomingMessage("wamid-q", lead.Phone, "Qual o preço do apartamento?"))

	// The bot answered through the gateway.
	require.NotEmpty(t, p.sender.sends)
	assert.Contains(t, p.sender.sends[0].Message, "Aurora")

	// The incoming row got its analysis.
	var incoming *models.WhatsAppConversation
	for i := range p.conversations.conversations {
		if p.conversations.conversations[i].MessageID == "wamid-q" {
			incoming = &p.conversations.conversations[i]
		}
	}
	require.NotNil(t, incoming)
	assert.Equal(t, CategoryPrice, incoming.Intent)
	assert.True(t, incoming.AIProcessed)
}

func TestWebhookNoAutoReplyForDoNotContact(t *testing.T) {
	p, svc := newWebhook()
	project := p.projects.add(&models.Project{Name: "Aurora", Price: float64Ptr(400000)})
	lead := p.addLead(func(l *models.Lead) { l.DoNotContact = true })
	p.leads.link(lead.ID, project.ID, time.Now())

	svc.HandleEvent(context.Background(), incomingMessage("wamid-q2", lead.Phone, "Qual o preço do apartamento?"))

	assert.Empty(t, p.sender.sends)
}

func TestWebhookOutgoingMessageResponseTime(t *testing.T) {
	p, svc := newWebhook()
	lead := p.addLead(nil)

	base := time.Now().UTC().Add(-5 * time.Minute)
	in := incomingMessage("wamid-in", lead.Phone, "olá")
	in.Data.Timestamp = base.Format(time.RFC3339)
	svc.HandleEvent(context.Background(), in)

	out := whatsapp.WebhookEvent{
		Type: whatsapp.EventTypeMessage,
		Data: whatsapp.WebhookData{
			ID:        "wamid-out",
			From:      "5500000000000@c.us",
			To:        lead.Phone + "@c.us",
			FromMe:    true,
			Body:      "resposta do corretor",
			Timestamp: base.Add(2 * time.Minute).Format(time.RFC3339),
		},
	}
	svc.HandleEvent(context.Background(), out)

	var outgoing *models.WhatsAppConversation
	for i := range p.conversations.conversations {
		if p.conversations.conversations[i].MessageID == "wamid-out" {
			outgoing = &p.conversations.conversations[i]
		}
	}
	require.NotNil(t, outgoing)
	assert.Equal(t, models.DirectionOutgoing, outgoing.Direction)
	require.NotNil(t, outgoing.ResponseTimeSeconds)
	assert.Equal(t, 120, *outgoing.ResponseTimeSeconds)
}

func TestWebhookNonMessageEventsIgnored(t *testing.T) {
	p, svc := newWebhook()
	p.addLead(nil)

	svc.HandleEvent(context.Background(), whatsapp.WebhookEvent{Type: whatsapp.EventTypeQR, Data: whatsapp.WebhookData{QRCode: "2@x"}})
	svc.HandleEvent(context.Background(), whatsapp.WebhookEvent{Type: whatsapp.EventTypeConnection, Data: whatsapp.WebhookData{State: "open"}})
	svc.HandleEvent(context.Background(), whatsapp.WebhookEvent{Type: "presence"})

	assert.Empty(t, p.conversations.conversations)
	assert.Empty(t, p.events.events)
}
