package services

// ChatbotConfig tunes the rule-based question answering for incoming
// WhatsApp messages. Keywords and templates are Brazilian Portuguese,
// matching the audience the bot talks to.
type ChatbotConfig struct {
	Enabled         bool
	QuestionPhrases []string
	ProjectKeywords []string
	Categories      map[string][]string
	Templates       ChatbotTemplates
}

// ChatbotTemplates holds the canned response formats. Placeholders are
// filled with project data at answer time.
type ChatbotTemplates struct {
	Price                string
	PriceNotAvailable    string
	Delivery             string
	DeliveryNotAvailable string
	Location             string
	LocationNotAvailable string
	Size                 string
	SizeNotAvailable     string
	Bedrooms             string
	BedroomsNotAvailable string
	Details              string
	MultipleProjects     string
	NoProjectFound       string
	GeneralResponse      string
}

// Question categories, in matching priority order.
const (
	CategoryPrice    = "price"
	CategoryDelivery = "delivery"
	CategoryLocation = "location"
	CategorySize     = "size"
	CategoryBedrooms = "bedrooms"
	CategoryDetails  = "details"
	CategoryOther    = "other"
)

var categoryOrder = []string{
	CategoryPrice, CategoryDelivery, CategoryLocation,
	CategorySize, CategoryBedrooms, CategoryDetails,
}

// DefaultChatbotConfig returns the stock configuration.
func DefaultChatbotConfig() *ChatbotConfig {
	return &ChatbotConfig{
		Enabled: true,
		QuestionPhrases: []string{
			"o que", "qual", "como", "quando", "onde", "por que", "quem", "quanto",
			"me fale", "gostaria de saber", "pode me informar", "tem como",
		},
		ProjectKeywords: []string{
			"projeto", "empreendimento", "casa", "apartamento", "imóvel",
			"preço", "valor", "custo", "lançamento", "entrega", "localização",
			"metragem", "área", "planta", "quartos", "suítes", "vaga", "garagem",
		},
		Categories: map[string][]string{
			CategoryPrice: {
				"preço", "valor", "custo", "quanto custa", "pagamento", "financiamento",
				"parcela", "prestação", "investimento", "orçamento",
			},
			CategoryDelivery: {
				"entrega", "quando fica pronto", "conclusão", "previsão", "cronograma",
				"prazo", "data de finalização", "termina quando",
			},
			CategoryLocation: {
				"localização", "endereço", "onde fica", "bairro", "rua", "avenida",
				"perto de", "próximo a", "região", "zona",
			},
			CategorySize: {
				"área", "metragem", "tamanho", "dimensão", "metros quadrados", "m²",
				"metro", "espaço", "planta",
			},
			CategoryBedrooms: {
				"quarto", "dormitório", "suíte", "cômodo", "quartos", "dependência",
				"quantos quartos", "tem suíte",
			},
			CategoryDetails: {
				"informação", "detalhe", "sobre o projeto", "característica",
				"funcionalidade", "descrição", "explicação", "material", "acabamento",
			},
		},
		Templates: ChatbotTemplates{
			Price:                "O valor do %s é %s.",
			PriceNotAvailable:    "Não tenho a informação de preço do %s neste momento. Um de nossos consultores entrará em contato para fornecer essa informação.",
			Delivery:             "A previsão de entrega do %s é %s.",
			DeliveryNotAvailable: "Não tenho a informação de entrega do %s neste momento. Um de nossos consultores entrará em contato para fornecer essa informação.",
			Location:             "O %s está localizado em %s.",
			LocationNotAvailable: "Não tenho a informação de localização do %s neste momento. Um de nossos consultores entrará em contato para fornecer essa informação.",
			Size:                 "O %s possui %s metros quadrados.",
			SizeNotAvailable:     "Não tenho a informação de metragem do %s neste momento. Um de nossos consultores entrará em contato para fornecer essa informação.",
			Bedrooms:             "O %s possui %d quartos.",
			BedroomsNotAvailable: "Não tenho a informação sobre quartos do %s neste momento. Um de nossos consultores entrará em contato para fornecer essa informação.",
			Details:              "O %s é um excelente empreendimento%s. Gostaria de mais alguma informação específica?",
			MultipleProjects:     "Você está interessado em qual dos seguintes projetos: %s?",
			NoProjectFound:       "Não consegui identificar o projeto específico. Poderia me dizer qual projeto lhe interessa?",
			GeneralResponse:      "Não entendi completamente sua pergunta sobre o %s. Poderia ser mais específico ou perguntar sobre o preço, data de entrega, localização ou tamanho?",
		},
	}
}
