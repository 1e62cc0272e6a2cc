package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
)

func newCapture() (*pipeline, *CaptureService) {
	p := newPipeline()
	svc := NewCaptureService(p.leads, p.events, p.eventService)
	return p, svc
}

func TestCaptureEventValidation(t *testing.T) {
	_, svc := newCapture()

	_, err := svc.CaptureEvent(context.Background(), CaptureEventInput{Phone: "5511987654321"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.CaptureEvent(context.Background(), CaptureEventInput{EventType: models.EventTypeFormSubmit})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCaptureEventByPhone(t *testing.T) {
	p, svc := newCapture()
	lead := p.addLead(func(l *models.Lead) { l.Phone = "(11) 98765-4321" })

	result, err := svc.CaptureEvent(context.Background(), CaptureEventInput{
		Phone:     "5511987654321@c.us",
		EventType: models.EventTypeWhatsAppMessage,
		EventText: "quero visitar",
		Origin:    "whatsapp",
	})

	require.NoError(t, err)
	assert.Equal(t, lead.ID, result.LeadID)

	require.Len(t, p.events.events, 1)
	event := p.events.events[0]
	assert.Equal(t, models.EventTypeWhatsAppMessage, event.EventType)
	assert.Equal(t, "whatsapp", event.Origin)
	assert.Contains(t, string(event.EventData), "quero visitar")
}

func TestCaptureEventFallsBackToEmail(t *testing.T) {
	p, svc := newCapture()
	lead := p.addLead(func(l *models.Lead) {
		l.Phone = ""
		l.Email = "maria@example.com"
	})

	result, err := svc.CaptureEvent(context.Background(), CaptureEventInput{
		Phone:     "5521999990000",
		Email:     "MARIA@example.com",
		EventType: models.EventTypeFormSubmit,
	})

	require.NoError(t, err)
	assert.Equal(t, lead.ID, result.LeadID)
}

func TestCaptureEventUnknownLead(t *testing.T) {
	_, svc := newCapture()

	_, err := svc.CaptureEvent(context.Background(), CaptureEventInput{
		Phone:     "5511987654321",
		EventType: models.EventTypeFormSubmit,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCaptureEventMergesAdditionalData(t *testing.T) {
	p, svc := newCapture()
	p.addLead(nil)

	_, err := svc.CaptureEvent(context.Background(), CaptureEventInput{
		Phone:     "5511987654321",
		EventType: models.EventTypeFormSubmit,
		EventText: "contato",
		AdditionalData: map[string]interface{}{
			"form": map[string]interface{}{"source": "landing"},
		},
	})
	require.NoError(t, err)

	require.Len(t, p.events.events, 1)
	data := string(p.events.events[0].EventData)
	assert.Contains(t, data, `"text":"contato"`)
	assert.Contains(t, data, `"source":"landing"`)
}

func TestCaptureEventTriggersMatching(t *testing.T) {
	p, svc := newCapture()
	project := p.projects.add(&models.Project{Name: "Aurora"})
	lead := p.addLead(nil)
	p.leads.link(lead.ID, project.ID, time.Now())
	p.addTemplate(project.ID, nil)

	_, err := svc.CaptureEvent(context.Background(), CaptureEventInput{
		Phone:     lead.Phone,
		EventType: models.EventTypeFormSubmit,
	})
	require.NoError(t, err)

	// The pipeline generated and dispatched a message.
	require.Len(t, p.logs.logs, 1)
	assert.Len(t, p.sender.sends, 1)
}

func TestCaptureEventShortPhoneWithEmailStillResolves(t *testing.T) {
	p, svc := newCapture()
	lead := p.addLead(func(l *models.Lead) { l.Email = "x@y.com" })

	result, err := svc.CaptureEvent(context.Background(), CaptureEventInput{
		Phone:     "123",
		Email:     "x@y.com",
		EventType: models.EventTypeFormSubmit,
	})
	require.NoError(t, err)
	assert.Equal(t, lead.ID, result.LeadID)
}
