package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// MappingsHandler manages category routing rule endpoints. All routes are
// super-admin only; the role gate lives in the router.
type MappingsHandler struct {
	service *service.MappingService
}

// NewMappingsHandler constructs handler.
func NewMappingsHandler(mappingService *service.MappingService) *MappingsHandler {
	return &MappingsHandler{service: mappingService}
}

// CreateMapping POST /mappings.
func (h *MappingsHandler) CreateMapping(c *fiber.Ctx) error {
	var req dto.CreateMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	mapping, err := h.service.Create(c.UserContext(), req.NLPCategory, req.TargetDivision)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.MappingResponseFrom(mapping)})
}

// ListMappings GET /mappings.
func (h *MappingsHandler) ListMappings(c *fiber.Ctx) error {
	mappings, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.MappingResponse, 0, len(mappings))
	for i := range mappings {
		items = append(items, dto.MappingResponseFrom(&mappings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetMappingActive PATCH /mappings/:id.
func (h *MappingsHandler) SetMappingActive(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid mapping id", nil)
	}
	var req dto.SetMappingActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	mapping, err := h.service.SetActive(c.UserContext(), id, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MappingResponseFrom(mapping)})
}
