package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/config"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/ai"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/scheduler"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/core/whatsapp"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/database"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/handlers"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/repositories"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/services"
	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/shared/utils"
)

// @title Smart Chatbot CRM API
// @version 1.0
// @description Lead event capture, automated WhatsApp messaging and conversation tracking
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting crm-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	leadRepo := repositories.NewLeadRepo(db.GORM)
	eventRepo := repositories.NewLeadEventRepo(db.GORM)
	projectRepo := repositories.NewProjectRepo(db.GORM)
	templateRepo := repositories.NewTemplateRepo(db.GORM)
	logRepo := repositories.NewMessageLogRepo(db.GORM)
	conversationRepo := repositories.NewConversationRepo(db.GORM)

	// Init AI generator (multi-provider support)
	generator, err := ai.NewGenerator(&ai.ProviderConfig{
		Type:       ai.ProviderType(cfg.AIProvider),
		ServiceURL: cfg.AIServiceURL,
		ServiceKey: cfg.AIServiceAPIKey,
		OpenAIKey:  cfg.OpenAIKey,
		Model:      cfg.OpenAIModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize AI generator: %v", err)
	}
	log.Printf("🤖 Using AI provider: %s", generator.GetProviderName())

	// Init WhatsApp gateway client (primary + fallbacks)
	gateway := whatsapp.NewGatewayClient(cfg.GatewayEndpoints(), cfg.WhatsAppSendTimeout)
	log.Printf("📱 WhatsApp gateway endpoints: %v", gateway.Endpoints())

	// Health probe is only available for the HTTP generation service
	aiProbe, _ := generator.(*ai.ServiceProvider)

	// Init services
	messageService := services.NewMessageService(generator, leadRepo, projectRepo, conversationRepo, logRepo)
	dispatchService := services.NewDispatchService(gateway, logRepo, eventRepo, conversationRepo, leadRepo)
	eventService := services.NewEventService(leadRepo, templateRepo, logRepo, messageService, dispatchService)
	captureService := services.NewCaptureService(leadRepo, eventRepo, eventService)
	conversationService := services.NewConversationService(conversationRepo)
	chatbotService := services.NewChatbotService(nil, leadRepo, projectRepo, conversationRepo)
	templateService := services.NewTemplateService(templateRepo, projectRepo)
	webhookService := services.NewWebhookService(leadRepo, eventRepo, conversationService, chatbotService, eventService, dispatchService)
	inactivityService := services.NewInactivityService(services.InactivityThresholds{
		ShortDays:  cfg.InactivityShortDays,
		MediumDays: cfg.InactivityMediumDays,
		LongDays:   cfg.InactivityLongDays,
	}, leadRepo, eventRepo, logRepo, templateRepo, messageService, dispatchService)

	// Init handlers
	eventHandler := handlers.NewEventHandler(captureService, eventService, eventRepo)
	whatsappHandler := handlers.NewWhatsAppHandler(gateway, dispatchService, webhookService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	conversationHandler := handlers.NewConversationHandler(conversationService, logRepo)
	inactivityHandler := handlers.NewInactivityHandler(inactivityService)
	healthHandler := handlers.NewHealthHandler(db, gateway, aiProbe)

	// Init inactivity scan cron
	sched := scheduler.NewScheduler()
	err = sched.AddJob("inactivity-scan", cfg.InactivityCron, func() {
		result, err := inactivityService.Scan(context.Background())
		if err != nil {
			utils.LogError("Inactivity scan failed", err, nil)
			return
		}
		utils.LogInfo("Inactivity scan completed", map[string]interface{}{
			"leads_scanned": result.LeadsScanned,
			"messages_sent": result.MessagesSent,
			"errors":        result.Errors,
		})
	})
	if err != nil {
		log.Fatalf("Failed to register inactivity scan: %v", err)
	}
	sched.Start()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Smart Chatbot CRM API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/health", healthHandler.Health)

	// Lead event routes
	app.Post("/events", eventHandler.CaptureEvent)
	app.Post("/events/process", eventHandler.ProcessEvent)
	app.Get("/leads/:id/events", eventHandler.ListLeadEvents)
	app.Post("/inactivity/scan", inactivityHandler.Scan)

	// WhatsApp routes
	app.Get("/whatsapp/status", whatsappHandler.Status)
	app.Post("/whatsapp/connect", whatsappHandler.Connect)
	app.Post("/whatsapp/disconnect", whatsappHandler.Disconnect)
	app.Get("/whatsapp/qrcode", whatsappHandler.QRCode)
	app.Post("/whatsapp/send", whatsappHandler.SendMessage)
	app.Post("/whatsapp/webhook", whatsappHandler.Webhook)

	// Template routes
	app.Post("/templates", templateHandler.Create)
	app.Get("/templates", templateHandler.ListByProject)
	app.Get("/templates/:id", templateHandler.Get)
	app.Put("/templates/:id", templateHandler.Update)
	app.Delete("/templates/:id", templateHandler.Deactivate)

	// Conversation routes
	app.Get("/conversations", conversationHandler.List)
	app.Get("/messages", conversationHandler.ListMessageLogs)

	// Start server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()
	log.Printf("✅ crm-api running at :%s", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down...")
	sched.Stop()
	if err := app.Shutdown(); err != nil {
		log.Printf("⚠️ Shutdown error: %v", err)
	}
}
