package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/tiagomarins-dev/smart-chatbot-mb-sub000/internal/services"
)

type TemplateHandler struct {
	templates *services.TemplateService
}

func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// Create godoc
// @Summary Create an automated message template
// @Tags Templates
// @Accept json
// @Produce json
// @Param data body services.TemplateInput true "Template definition"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /templates [post]
func (h *TemplateHandler) Create(c *fiber.Ctx) error {
	var input services.TemplateInput
	if err := c.BodyParser(&input); err != nil {
		return SendError(c, "invalid request body", fiber.StatusBadRequest)
	}

	template, err := h.templates.Create(input)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, template)
}

// Update godoc
// @Summary Update a template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /templates/{id} [put]
func (h *TemplateHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return SendError(c, "template id must be a valid UUID", fiber.StatusBadRequest)
	}

	var input services.TemplateInput
	if err := c.BodyParser(&input); err != nil {
		return SendError(c, "invalid request body", fiber.StatusBadRequest)
	}

	template, err := h.templates.Update(id, input)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, template)
}

// Get godoc
// @Summary Get a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return SendError(c, "template id must be a valid UUID", fiber.StatusBadRequest)
	}

	template, err := h.templates.Get(id)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, template)
}

// ListByProject godoc
// @Summary List a project's templates
// @Tags Templates
// @Produce json
// @Param project_id query string true "Project ID"
// @Success 200 {object} map[string]interface{}
// @Router /templates [get]
func (h *TemplateHandler) ListByProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Query("project_id"))
	if err != nil {
		return SendError(c, "project_id query parameter must be a valid UUID", fiber.StatusBadRequest)
	}

	templates, err := h.templates.ListByProject(projectID)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, fiber.Map{"templates": templates, "count": len(templates)})
}

// Deactivate godoc
// @Summary Deactivate a template
// @Description Templates are never deleted; message logs keep their reference.
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Deactivate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return SendError(c, "template id must be a valid UUID", fiber.StatusBadRequest)
	}

	template, err := h.templates.Deactivate(id)
	if err != nil {
		return SendServiceError(c, err)
	}
	return SendSuccess(c, template)
}
