package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/intranet-directory/internal/api/dto"
	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/service"
)

const maxPageSize = 200

// DirectoryService is what the directory endpoints need.
type DirectoryService interface {
	Import(ctx context.Context, employees []domain.Employee) (int64, error)
	List(ctx context.Context, filters service.DirectoryListFilters) ([]domain.Employee, error)
	Get(ctx context.Context, id string) (*domain.Employee, error)
	GetByName(ctx context.Context, name string) (*domain.Employee, error)
	GetByEmail(ctx context.Context, email string) (*domain.Employee, error)
	UpdateSkillsByName(ctx context.Context, name string, skills domain.SkillProfile) (*domain.Employee, error)
	UpdateSkillsByEmail(ctx context.Context, email string, skills domain.SkillProfile) (*domain.Employee, error)
	Create(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, id string, employee domain.Employee) (*domain.Employee, error)
	Delete(ctx context.Context, id string) error
}

// DirectoryHandler exposes the employee directory.
type DirectoryHandler struct {
	directory DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// List handles GET /api/directory.
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	page, err := positiveQueryInt(c, "page", 1)
	if err != nil {
		return err
	}
	pageSize, err := positiveQueryInt(c, "page_size", 50)
	if err != nil {
		return err
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filters := service.DirectoryListFilters{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if dept := utils.CopyString(c.Query("department")); dept != "" {
		filters.Department = &dept
	}

	employees, err := h.directory.List(c.UserContext(), filters)
	if err != nil {
		return err
	}
	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, dto.NewEmployeeResponse(e))
	}
	return c.JSON(fiber.Map{
		"data": resp,
		"meta": fiber.Map{"page": page, "page_size": pageSize},
	})
}

// Get handles GET /api/directory/:id.
func (h *DirectoryHandler) Get(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	e, err := h.directory.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// GetByName handles GET /api/directory/by-name/:name.
func (h *DirectoryHandler) GetByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	e, err := h.directory.GetByName(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// GetByEmail handles GET /api/directory/by-email/:email.
func (h *DirectoryHandler) GetByEmail(c *fiber.Ctx) error {
	email, err := pathParam(c, "email")
	if err != nil {
		return err
	}
	e, err := h.directory.GetByEmail(c.UserContext(), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// UpdateSkillsByName handles PUT /api/directory/by-name/:name.
func (h *DirectoryHandler) UpdateSkillsByName(c *fiber.Ctx) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return err
	}
	var req dto.SkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	e, err := h.directory.UpdateSkillsByName(c.UserContext(), name, req.ToProfile())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// UpdateSkillsByEmail handles PUT /api/directory/by-email/:email.
func (h *DirectoryHandler) UpdateSkillsByEmail(c *fiber.Ctx) error {
	email, err := pathParam(c, "email")
	if err != nil {
		return err
	}
	var req dto.SkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	e, err := h.directory.UpdateSkillsByEmail(c.UserContext(), email, req.ToProfile())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// Create handles POST /api/directory.
func (h *DirectoryHandler) Create(c *fiber.Ctx) error {
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	e, err := h.directory.Create(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// Update handles PUT /api/directory/:id.
func (h *DirectoryHandler) Update(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	e, err := h.directory.Update(c.UserContext(), id, req.ToDomain())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*e)})
}

// Delete handles DELETE /api/directory/:id.
func (h *DirectoryHandler) Delete(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.directory.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Import handles POST /api/directory/import. The body is either a JSON array
// of employees or an object with an "employees" array.
func (h *DirectoryHandler) Import(c *fiber.Ctx) error {
	employees, err := dto.DecodeImport(c.Body())
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	n, err := h.directory.Import(c.UserContext(), employees)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ImportResponse{Imported: n}})
}

func pathParam(c *fiber.Ctx, key string) (string, error) {
	raw := utils.CopyString(c.Params(key))
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", fiber.NewError(http.StatusBadRequest, "invalid "+key)
	}
	return value, nil
}

func positiveQueryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid "+key)
	}
	return v, nil
}
