package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intranet-directory/internal/api/dto"
	"github.com/spec-kit/intranet-directory/internal/domain"
	"github.com/spec-kit/intranet-directory/internal/orgchart"
)

// OrgService is what the org chart endpoints need.
type OrgService interface {
	Current(ctx context.Context) (*domain.OrgSnapshot, error)
	Rebuild(ctx context.Context) (*domain.OrgSnapshot, error)
	Preview(ctx context.Context) (*orgchart.Tree, error)
}

// OrgHandler exposes the org chart.
type OrgHandler struct {
	orgService OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(orgService OrgService) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

// Structure handles GET /api/org/structure.
func (h *OrgHandler) Structure(c *fiber.Ctx) error {
	snap, err := h.orgService.Current(c.UserContext())
	if err != nil {
		return err
	}
	return snapshotResponse(c, snap)
}

// Rebuild handles POST /api/org/rebuild.
func (h *OrgHandler) Rebuild(c *fiber.Ctx) error {
	snap, err := h.orgService.Rebuild(c.UserContext())
	if err != nil {
		return err
	}
	return snapshotResponse(c, snap)
}

// Preview handles GET /api/org/from-employees.
func (h *OrgHandler) Preview(c *fiber.Ctx) error {
	tree, err := h.orgService.Preview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": tree,
		"meta": fiber.Map{"totalEmployees": tree.TotalEmployees, "saved": false},
	})
}

func snapshotResponse(c *fiber.Ctx, snap *domain.OrgSnapshot) error {
	return c.JSON(fiber.Map{
		"data": json.RawMessage(snap.Data),
		"meta": dto.OrgMeta{TotalEmployees: snap.TotalEmployees, UpdatedAt: snap.UpdatedAt},
	})
}
