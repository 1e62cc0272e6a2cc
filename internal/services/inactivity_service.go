package services

import (
	"context"
	"time"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/rules"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// Inactivity tiers.
const (
	InactivityShort  = "short"
	InactivityMedium = "medium"
	InactivityLong   = "long"
)

const scanBatchLimit = 500

// InactivityThresholds holds the tier boundaries in days.
type InactivityThresholds struct {
	ShortDays  int
	MediumDays int
	LongDays   int
}

// DefaultInactivityThresholds is the stock 3/7/14 day ladder.
func DefaultInactivityThresholds() InactivityThresholds {
	return InactivityThresholds{ShortDays: 3, MediumDays: 7, LongDays: 14}
}

// ScanResult counts what one scan run did.
type ScanResult struct {
	LeadsScanned     int `json:"leads_scanned"`
	ShortInactivity  int `json:"short_inactivity"`
	MediumInactivity int `json:"medium_inactivity"`
	LongInactivity   int `json:"long_inactivity"`
	MessagesSent     int `json:"messages_sent"`
	Errors           int `json:"errors"`
}

// InactivityService periodically finds leads that went quiet and sends
// them tiered re-engagement messages.
type InactivityService struct {
	thresholds InactivityThresholds
	leads      repositories.LeadRepo
	events     repositories.LeadEventRepo
	logs       repositories.MessageLogRepo
	templates  repositories.TemplateRepo
	messages   *MessageService
	dispatcher *DispatchService
}

func NewInactivityService(
	thresholds InactivityThresholds,
	leads repositories.LeadRepo,
	events repositories.LeadEventRepo,
	logs repositories.MessageLogRepo,
	templates repositories.TemplateRepo,
	messages *MessageService,
	dispatcher *DispatchService,
) *InactivityService {
	if thresholds.ShortDays == 0 {
		thresholds = DefaultInactivityThresholds()
	}
	return &InactivityService{
		thresholds: thresholds,
		leads:      leads,
		events:     events,
		logs:       logs,
		templates:  templates,
		messages:   messages,
		dispatcher: dispatcher,
	}
}

// Scan walks the contactable leads, classifies each into an inactivity
// tier and sends one message per due lead. Per-lead failures are
// counted, never fatal.
func (s *InactivityService) Scan(ctx context.Context) (*ScanResult, error) {
	now := time.Now().UTC()
	result := &ScanResult{}

	templates, err := s.templates.FindActiveByTriggerType(models.EventTypeInactivity)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		utils.LogInfo("No active inactivity templates, scan skipped", nil)
		return result, nil
	}

	leads, err := s.leads.FindContactable(scanBatchLimit)
	if err != nil {
		return nil, err
	}
	result.LeadsScanned = len(leads)

	for i := range leads {
		lead := &leads[i]
		if err := s.processLead(ctx, lead, templates, now, result); err != nil {
			utils.LogError("Failed to process inactive lead", err, map[string]interface{}{
				"lead_id": lead.ID.String(),
			})
			result.Errors++
		}
	}

	utils.LogInfo("Inactivity scan complete", map[string]interface{}{
		"leads_scanned": result.LeadsScanned,
		"messages_sent": result.MessagesSent,
		"errors":        result.Errors,
	})
	return result, nil
}

func (s *InactivityService) processLead(
	ctx context.Context,
	lead *models.Lead,
	templates []models.AutomatedMessageTemplate,
	now time.Time,
	result *ScanResult,
) error {
	lastEventAt, err := s.events.LastEventAt(lead.ID)
	if err != nil {
		return err
	}
	if lastEventAt == nil {
		// Leads with no events at all are not inactive, just new.
		return nil
	}

	shortCutoff := now.AddDate(0, 0, -s.thresholds.ShortDays)
	mediumCutoff := now.AddDate(0, 0, -s.thresholds.MediumDays)
	longCutoff := now.AddDate(0, 0, -s.thresholds.LongDays)

	lastInactivityLog, err := s.logs.LastInactivityLog(lead.ID)
	if err != nil {
		return err
	}
	var lastMessageAt *time.Time
	if lastInactivityLog != nil {
		t := lastInactivityLog.CreatedAt
		lastMessageAt = &t
	}

	var level string
	switch {
	case lastEventAt.Before(longCutoff):
		level = InactivityLong
		// Cooldown: wait the next-lower tier's span between messages.
		if lastMessageAt != nil && !lastMessageAt.Before(mediumCutoff) {
			return nil
		}
		result.LongInactivity++

	case lastEventAt.Before(mediumCutoff):
		level = InactivityMedium
		if lastMessageAt != nil && !lastMessageAt.Before(shortCutoff) {
			return nil
		}
		result.MediumInactivity++

	case lastEventAt.Before(shortCutoff):
		level = InactivityShort
		if lastMessageAt != nil {
			// One short-tier message per inactivity spell.
			if lastMessageAt.After(*lastEventAt) {
				return nil
			}
		}
		result.ShortInactivity++

	default:
		return nil
	}

	template := firstMatchingTemplate(templates, level)
	if template == nil {
		return nil
	}

	daysInactive := int(now.Sub(*lastEventAt).Hours() / 24)
	lastEvent, err := s.events.LastByLead(lead.ID)
	if err != nil {
		return err
	}

	logEntry, err := s.messages.GenerateForInactivity(ctx, lead, template, level, daysInactive, lastEvent)
	if err != nil {
		return err
	}
	result.MessagesSent++

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, logEntry, lead)
	}
	return nil
}

// firstMatchingTemplate returns the first template whose configured
// inactivity levels include the given level. Templates without a level
// list apply to every tier.
func firstMatchingTemplate(templates []models.AutomatedMessageTemplate, level string) *models.AutomatedMessageTemplate {
	for i := range templates {
		levels := rules.ParseInactivityLevels(templates[i].TriggerConditions)
		if len(levels) == 0 || contains(levels, level) {
			return &templates[i]
		}
	}
	return nil
}
