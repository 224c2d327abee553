package server

import (
	"github.com/gofiber/fiber/v2"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (s *Server) adminListProjects(c *fiber.Ctx) error {
	q, err := listQuery(c, nil)
	if err != nil {
		return err
	}
	id := identityFrom(c)
	if !id.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}
	page, err := s.svc.List(c.UserContext(), q, catalog.DefaultAdminLimit)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (s *Server) updateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body")
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		return badRequest("Invalid status")
	}

	project, err := s.svc.TransitionStatus(c.UserContext(), identityFrom(c), c.Params("id"), status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(project)
}

func (s *Server) deleteProject(c *fiber.Ctx) error {
	if err := s.svc.Remove(c.UserContext(), identityFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Project deleted successfully"})
}

func (s *Server) stats(c *fiber.Ctx) error {
	stats, err := s.svc.Stats(c.UserContext(), identityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"projects": fiber.Map{
			"total":    stats.TotalProjects,
			"pending":  stats.PendingProjects,
			"approved": stats.ApprovedProjects,
			"rejected": stats.RejectedProjects,
			"featured": stats.FeaturedProjects,
			"archived": stats.ArchivedProjects,
		},
		"users": fiber.Map{
			"total": stats.TotalUsers,
		},
		"engagement": fiber.Map{
			"totalViews":     stats.TotalViews,
			"totalFavorites": stats.TotalFavorites,
		},
	})
}
