package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/apperrors"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// CaptureEventInput identifies a lead by phone or email and describes
// the event to record against it.
type CaptureEventInput struct {
	Phone          string                 `json:"phone"`
	Email          string                 `json:"email"`
	EventType      string                 `json:"event_type"`
	EventText      string                 `json:"event_text"`
	Origin         string                 `json:"origin"`
	AdditionalData map[string]interface{} `json:"additional_data"`
}

// CaptureResult reports the resolved lead and the stored event.
type CaptureResult struct {
	LeadID  uuid.UUID `json:"lead_id"`
	EventID uuid.UUID `json:"event_id"`
}

// CaptureService resolves external events to leads and appends them to
// the event log, then hands them to the processing pipeline.
type CaptureService struct {
	leads     repositories.LeadRepo
	events    repositories.LeadEventRepo
	processor *EventService
}

func NewCaptureService(leads repositories.LeadRepo, events repositories.LeadEventRepo, processor *EventService) *CaptureService {
	return &CaptureService{leads: leads, events: events, processor: processor}
}

// CaptureEvent validates the input, resolves the lead (phone first,
// then email), records the event and runs template matching for it.
func (s *CaptureService) CaptureEvent(ctx context.Context, input CaptureEventInput) (*CaptureResult, error) {
	if input.EventType == "" {
		return nil, apperrors.Validation("event_type is required")
	}
	if input.Phone == "" && input.Email == "" {
		return nil, apperrors.Validation("either phone or email is required to identify the lead")
	}

	lead, err := s.resolveLead(input.Phone, input.Email)
	if err != nil {
		return nil, err
	}

	eventData := map[string]interface{}{"text": input.EventText}
	for k, v := range input.AdditionalData {
		eventData[k] = v
	}
	rawData, err := json.Marshal(eventData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event data: %w", err)
	}

	event := &models.LeadEvent{
		LeadID:    lead.ID,
		EventType: input.EventType,
		EventData: rawData,
		Origin:    input.Origin,
	}
	if err := s.events.Create(event); err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}

	utils.LogInfo("Event captured", map[string]interface{}{
		"lead_id":    lead.ID.String(),
		"event_type": input.EventType,
		"origin":     input.Origin,
	})

	if s.processor != nil {
		if _, err := s.processor.ProcessEvent(ctx, ProcessEventInput{
			LeadID:    lead.ID,
			EventType: input.EventType,
			EventData: eventData,
		}); err != nil {
			// Capture succeeded; matching problems must not undo it.
			utils.LogError("Event processing failed after capture", err, map[string]interface{}{
				"lead_id": lead.ID.String(),
			})
		}
	}

	return &CaptureResult{LeadID: lead.ID, EventID: event.ID}, nil
}

func (s *CaptureService) resolveLead(phone, email string) (*models.Lead, error) {
	if phone != "" {
		formats, err := whatsapp.SearchFormats(phone)
		if err != nil {
			if email == "" {
				return nil, err
			}
		} else {
			likeFormats := make([]string, len(formats))
			for i, f := range formats {
				likeFormats[i] = "%" + f + "%"
			}
			lead, err := s.leads.FindByPhoneFormats(likeFormats)
			if err == nil {
				return lead, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}

	if email != "" {
		lead, err := s.leads.FindByEmail(strings.ToLower(email))
		if err == nil {
			return lead, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, apperrors.NotFound("no lead found with the provided phone or email")
}
