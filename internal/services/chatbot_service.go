package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/models"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// MessageAnalysis classifies one incoming message.
type MessageAnalysis struct {
	IsQuestion      bool   `json:"is_question"`
	ProjectQuestion bool   `json:"project_question"`
	Category        string `json:"category"`
	ProjectName     string `json:"project_name,omitempty"`
	Attribute       string `json:"attribute,omitempty"`
}

// ChatbotResponse is the bot's decision for one incoming message.
type ChatbotResponse struct {
	Message       string
	ShouldRespond bool
	Analysis      MessageAnalysis
}

var projectNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)projeto\s+([a-zA-Z0-9\s]+)`),
	regexp.MustCompile(`(?i)empreendimento\s+([a-zA-Z0-9\s]+)`),
	regexp.MustCompile(`(?i)imóvel\s+([a-zA-Z0-9\s]+)`),
}

// ChatbotService answers factual project questions from leads without
// going through AI generation. Anything it cannot answer is left for a
// human consultant.
type ChatbotService struct {
	config        *ChatbotConfig
	leads         repositories.LeadRepo
	projects      repositories.ProjectRepo
	conversations repositories.ConversationRepo
}

func NewChatbotService(
	config *ChatbotConfig,
	leads repositories.LeadRepo,
	projects repositories.ProjectRepo,
	conversations repositories.ConversationRepo,
) *ChatbotService {
	if config == nil {
		config = DefaultChatbotConfig()
	}
	return &ChatbotService{
		config:        config,
		leads:         leads,
		projects:      projects,
		conversations: conversations,
	}
}

// AnalyzeMessage classifies the message: is it a question, is it about
// a project, which category, and which project name it mentions.
func (s *ChatbotService) AnalyzeMessage(message string) MessageAnalysis {
	lower := strings.ToLower(message)

	analysis := MessageAnalysis{Category: CategoryOther}

	analysis.IsQuestion = strings.Contains(lower, "?")
	if !analysis.IsQuestion {
		for _, phrase := range s.config.QuestionPhrases {
			if strings.Contains(lower, phrase) {
				analysis.IsQuestion = true
				break
			}
		}
	}

	for _, keyword := range s.config.ProjectKeywords {
		if strings.Contains(lower, keyword) {
			analysis.ProjectQuestion = true
			break
		}
	}

	for _, pattern := range projectNamePatterns {
		if match := pattern.FindStringSubmatch(lower); len(match) > 1 {
			analysis.ProjectName = strings.TrimSpace(match[1])
			break
		}
	}

	// First matching category wins.
	for _, category := range categoryOrder {
		if matchesAny(lower, s.config.Categories[category]) {
			analysis.Category = category
			analysis.Attribute = categoryAttribute(category)
			break
		}
	}

	return analysis
}

func matchesAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func categoryAttribute(category string) string {
	switch category {
	case CategoryPrice:
		return "price"
	case CategoryDelivery:
		return "delivery_date"
	case CategoryLocation:
		return "address"
	case CategorySize:
		return "size"
	case CategoryBedrooms:
		return "bedrooms"
	case CategoryDetails:
		return "description"
	default:
		return ""
	}
}

// ProcessMessage decides whether to auto-answer an incoming message.
// The bot only answers questions that are clearly about a project.
func (s *ChatbotService) ProcessMessage(message string, leadID uuid.UUID) ChatbotResponse {
	analysis := s.AnalyzeMessage(message)

	response := ChatbotResponse{Analysis: analysis}
	if !s.config.Enabled || !analysis.IsQuestion || !analysis.ProjectQuestion {
		return response
	}

	response.ShouldRespond = true
	response.Message = s.answer(analysis, leadID)
	return response
}

func (s *ChatbotService) answer(analysis MessageAnalysis, leadID uuid.UUID) string {
	var project *models.Project

	if analysis.ProjectName != "" {
		if found, err := s.projects.FindByNameLike(analysis.ProjectName); err == nil && found != nil {
			project = found
		}
	}

	if project == nil && leadID != uuid.Nil {
		leadProjects := s.leadProjects(leadID)
		switch len(leadProjects) {
		case 0:
		case 1:
			project = &leadProjects[0]
		default:
			names := make([]string, len(leadProjects))
			for i, p := range leadProjects {
				names[i] = p.Name
			}
			return fmt.Sprintf(s.config.Templates.MultipleProjects, strings.Join(names, ", "))
		}
	}

	if project == nil {
		return s.config.Templates.NoProjectFound
	}

	t := s.config.Templates
	switch analysis.Category {
	case CategoryPrice:
		if project.Price != nil {
			return fmt.Sprintf(t.Price, project.Name, formatCurrency(*project.Price))
		}
		return fmt.Sprintf(t.PriceNotAvailable, project.Name)

	case CategoryDelivery:
		if project.DeliveryDate != nil {
			return fmt.Sprintf(t.Delivery, project.Name, formatMonthYear(*project.DeliveryDate))
		}
		return fmt.Sprintf(t.DeliveryNotAvailable, project.Name)

	case CategoryLocation:
		if project.Address != "" {
			return fmt.Sprintf(t.Location, project.Name, project.Address)
		}
		return fmt.Sprintf(t.LocationNotAvailable, project.Name)

	case CategorySize:
		if project.Size != nil {
			return fmt.Sprintf(t.Size, project.Name, formatNumber(*project.Size))
		}
		return fmt.Sprintf(t.SizeNotAvailable, project.Name)

	case CategoryBedrooms:
		if project.Bedrooms != nil {
			return fmt.Sprintf(t.Bedrooms, project.Name, *project.Bedrooms)
		}
		return fmt.Sprintf(t.BedroomsNotAvailable, project.Name)

	case CategoryDetails:
		description := ""
		if project.Description != "" {
			description = ": " + project.Description
		}
		return fmt.Sprintf(t.Details, project.Name, description)

	default:
		return fmt.Sprintf(t.GeneralResponse, project.Name)
	}
}

func (s *ChatbotService) leadProjects(leadID uuid.UUID) []models.Project {
	ids, err := s.leads.ProjectIDs(leadID)
	if err != nil || len(ids) == 0 {
		return nil
	}
	projects, err := s.projects.FindByIDs(ids)
	if err != nil {
		return nil
	}
	return projects
}

// SaveAnalysis writes the classification back onto the conversation row.
func (s *ChatbotService) SaveAnalysis(conversationID uuid.UUID, analysis MessageAnalysis) {
	entities, _ := json.Marshal(map[string]interface{}{
		"project_name": analysis.ProjectName,
		"attribute":    analysis.Attribute,
	})
	if err := s.conversations.UpdateAnalysis(conversationID, repositories.ConversationAnalysis{
		Intent:   analysis.Category,
		Entities: entities,
	}); err != nil {
		utils.LogError("Failed to save message analysis", err, map[string]interface{}{
			"conversation_id": conversationID.String(),
		})
	}
}

func formatCurrency(value float64) string {
	// pt-BR style: R$ 1.234.567,89
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart, decPart := parts[0], parts[1]

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	return "R$ " + b.String() + "," + decPart
}

func formatNumber(value float64) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return strings.Replace(fmt.Sprintf("%.2f", value), ".", ",", 1)
}

var monthNames = []string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func formatMonthYear(t time.Time) string {
	return fmt.Sprintf("%s de %d", monthNames[t.Month()-1], t.Year())
}
