package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/ai"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
)

// In-memory repository fakes. They implement just enough of the query
// semantics the services rely on.

type fakeLeadRepo struct {
	leads        map[uuid.UUID]*models.Lead
	projects     map[uuid.UUID][]models.LeadProject
	recordedAt   map[uuid.UUID]time.Time
	recordCounts map[uuid.UUID]int
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{
		leads:        make(map[uuid.UUID]*models.Lead),
		projects:     make(map[uuid.UUID][]models.LeadProject),
		recordedAt:   make(map[uuid.UUID]time.Time),
		recordCounts: make(map[uuid.UUID]int),
	}
}

func (r *fakeLeadRepo) add(lead *models.Lead) *models.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	r.leads[lead.ID] = lead
	return lead
}

func (r *fakeLeadRepo) link(leadID, projectID uuid.UUID, capturedAt time.Time) {
	r.projects[leadID] = append(r.projects[leadID], models.LeadProject{
		LeadID: leadID, ProjectID: projectID, CapturedAt: capturedAt,
	})
}

func (r *fakeLeadRepo) FindByID(id uuid.UUID) (*models.Lead, error) {
	if lead, ok := r.leads[id]; ok {
		return lead, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByPhoneFormats(formats []string) (*models.Lead, error) {
	for _, lead := range r.leads {
		for _, f := range formats {
			needle := strings.Trim(f, "%")
			if needle != "" && strings.Contains(lead.Phone, needle) {
				return lead, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindByEmail(email string) (*models.Lead, error) {
	for _, lead := range r.leads {
		if strings.EqualFold(lead.Email, email) {
			return lead, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeadRepo) FindContactable(limit int) ([]models.Lead, error) {
	var out []models.Lead
	for _, lead := range r.leads {
		if !lead.DoNotContact {
			out = append(out, *lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLeadRepo) ProjectIDs(leadID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, lp := range r.projects[leadID] {
		ids = append(ids, lp.ProjectID)
	}
	return ids, nil
}

func (r *fakeLeadRepo) LatestProjectID(leadID uuid.UUID) (*uuid.UUID, error) {
	links := r.projects[leadID]
	if len(links) == 0 {
		return nil, nil
	}
	latest := links[0]
	for _, lp := range links[1:] {
		if lp.CapturedAt.After(latest.CapturedAt) {
			latest = lp
		}
	}
	id := latest.ProjectID
	return &id, nil
}

func (r *fakeLeadRepo) RecordAutomatedMessage(leadID uuid.UUID, at time.Time) error {
	r.recordedAt[leadID] = at
	r.recordCounts[leadID]++
	return nil
}

type fakeLeadEventRepo struct {
	events []models.LeadEvent
}

func (r *fakeLeadEventRepo) Create(event *models.LeadEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeLeadEventRepo) LastByLead(leadID uuid.UUID) (*models.LeadEvent, error) {
	var last *models.LeadEvent
	for i := range r.events {
		e := &r.events[i]
		if e.LeadID != leadID {
			continue
		}
		if last == nil || e.CreatedAt.After(last.CreatedAt) {
			last = e
		}
	}
	return last, nil
}

func (r *fakeLeadEventRepo) LastEventAt(leadID uuid.UUID) (*time.Time, error) {
	last, _ := r.LastByLead(leadID)
	if last == nil {
		return nil, nil
	}
	t := last.CreatedAt
	return &t, nil
}

func (r *fakeLeadEventRepo) FindByLead(leadID uuid.UUID, limit int) ([]models.LeadEvent, error) {
	var out []models.LeadEvent
	for _, e := range r.events {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeTemplateRepo struct {
	templates []models.AutomatedMessageTemplate
}

func (r *fakeTemplateRepo) Create(t *models.AutomatedMessageTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.templates = append(r.templates, *t)
	return nil
}

func (r *fakeTemplateRepo) Update(t *models.AutomatedMessageTemplate) error {
	for i := range r.templates {
		if r.templates[i].ID == t.ID {
			r.templates[i] = *t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeTemplateRepo) FindByID(id uuid.UUID) (*models.AutomatedMessageTemplate, error) {
	for i := range r.templates {
		if r.templates[i].ID == id {
			t := r.templates[i]
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTemplateRepo) FindByProject(projectID uuid.UUID) ([]models.AutomatedMessageTemplate, error) {
	var out []models.AutomatedMessageTemplate
	for _, t := range r.templates {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTemplateRepo) FindActiveByTrigger(projectID uuid.UUID, triggerType string) ([]models.AutomatedMessageTemplate, error) {
	var out []models.AutomatedMessageTemplate
	for _, t := range r.templates {
		if t.ProjectID == projectID && t.TriggerType == triggerType && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeTemplateRepo) FindActiveByTriggerType(triggerType string) ([]models.AutomatedMessageTemplate, error) {
	var out []models.AutomatedMessageTemplate
	for _, t := range r.templates {
		if t.TriggerType == triggerType && t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeMessageLogRepo struct {
	logs []models.AutomatedMessageLog
}

func (r *fakeMessageLogRepo) Create(log *models.AutomatedMessageLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeMessageLogRepo) CountByTemplateAndLead(templateID, leadID uuid.UUID) (int64, error) {
	var count int64
	for _, l := range r.logs {
		if l.TemplateID != nil && *l.TemplateID == templateID && l.LeadID == leadID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageLogRepo) LastInactivityLog(leadID uuid.UUID) (*models.AutomatedMessageLog, error) {
	var last *models.AutomatedMessageLog
	for i := range r.logs {
		l := &r.logs[i]
		if l.LeadID != leadID || !strings.Contains(string(l.Metadata), "inactivity_level") {
			continue
		}
		if last == nil || l.CreatedAt.After(last.CreatedAt) {
			last = l
		}
	}
	if last == nil {
		return nil, nil
	}
	out := *last
	return &out, nil
}

func (r *fakeMessageLogRepo) UpdateStatus(id uuid.UUID, status string, sentAt *time.Time) error {
	for i := range r.logs {
		if r.logs[i].ID == id {
			r.logs[i].Status = status
			r.logs[i].SentAt = sentAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMessageLogRepo) MarkResponse(id uuid.UUID, responseTimeMinutes int) error {
	for i := range r.logs {
		if r.logs[i].ID == id {
			r.logs[i].ResponseReceived = true
			rt := responseTimeMinutes
			r.logs[i].ResponseTimeMinutes = &rt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMessageLogRepo) FindByID(id uuid.UUID) (*models.AutomatedMessageLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == id {
			l := r.logs[i]
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageLogRepo) List(filter repositories.MessageLogFilter) ([]models.AutomatedMessageLog, error) {
	var out []models.AutomatedMessageLog
	for _, l := range r.logs {
		if filter.LeadID != nil && l.LeadID != *filter.LeadID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type fakeConversationRepo struct {
	conversations []models.WhatsAppConversation
}

func (r *fakeConversationRepo) Exists(leadID uuid.UUID, messageID string) (bool, error) {
	for _, c := range r.conversations {
		if c.LeadID == leadID && c.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeConversationRepo) Create(c *models.WhatsAppConversation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.conversations = append(r.conversations, *c)
	return nil
}

func (r *fakeConversationRepo) RecentByLead(leadID uuid.UUID, limit int) ([]models.WhatsAppConversation, error) {
	var out []models.WhatsAppConversation
	for _, c := range r.conversations {
		if c.LeadID == leadID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MessageTimestamp.After(out[j].MessageTimestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConversationRepo) LastIncomingBefore(leadID uuid.UUID, before time.Time) (*models.WhatsAppConversation, error) {
	var last *models.WhatsAppConversation
	for i := range r.conversations {
		c := &r.conversations[i]
		if c.LeadID != leadID || c.Direction != models.DirectionIncoming || !c.MessageTimestamp.Before(before) {
			continue
		}
		if last == nil || c.MessageTimestamp.After(last.MessageTimestamp) {
			last = c
		}
	}
	if last == nil {
		return nil, nil
	}
	out := *last
	return &out, nil
}

func (r *fakeConversationRepo) SetResponseTime(leadID uuid.UUID, messageID string, seconds int) error {
	for i := range r.conversations {
		if r.conversations[i].LeadID == leadID && r.conversations[i].MessageID == messageID {
			s := seconds
			r.conversations[i].ResponseTimeSeconds = &s
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) UpdateAnalysis(id uuid.UUID, analysis repositories.ConversationAnalysis) error {
	for i := range r.conversations {
		if r.conversations[i].ID == id {
			r.conversations[i].Intent = analysis.Intent
			r.conversations[i].Entities = analysis.Entities
			r.conversations[i].Sentiment = analysis.Sentiment
			r.conversations[i].AIProcessed = true
			now := time.Now().UTC()
			r.conversations[i].AnalyzedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) List(filter repositories.ConversationFilter) ([]models.WhatsAppConversation, error) {
	var out []models.WhatsAppConversation
	for _, c := range r.conversations {
		if filter.LeadID != nil && c.LeadID != *filter.LeadID {
			continue
		}
		if filter.Direction != "" && c.Direction != filter.Direction {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*models.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*models.Project)}
}

func (r *fakeProjectRepo) add(p *models.Project) *models.Project {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.projects[p.ID] = p
	return p
}

func (r *fakeProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	if p, ok := r.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProjectRepo) FindByIDs(ids []uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	for _, id := range ids {
		if p, ok := r.projects[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) FindByNameLike(name string) (*models.Project, error) {
	for _, p := range r.projects {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			return p, nil
		}
	}
	return nil, nil
}

// fakeGenerator returns a fixed message or error.
type fakeGenerator struct {
	message  string
	err      error
	requests []ai.GenerationRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req ai.GenerationRequest) (string, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return g.message, nil
}

func (g *fakeGenerator) GetProviderName() string { return "fake" }

// fakeSender records sends and can fail on demand.
type fakeSender struct {
	err   error
	sends []struct {
		Number  string
		Message string
	}
	messageID string
}

func (s *fakeSender) Send(_ context.Context, number, message string) (*whatsapp.SendResult, error) {
	s.sends = append(s.sends, struct {
		Number  string
		Message string
	}{number, message})
	if s.err != nil {
		return nil, s.err
	}
	return &whatsapp.SendResult{Success: true, MessageID: s.messageID}, nil
}
