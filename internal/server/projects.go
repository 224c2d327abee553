package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

// listQuery reads the shared listing parameters. An empty status with
// fallback nil lists every status.
func listQuery(c *fiber.Ctx, fallback *models.ProjectStatus) (catalog.ListQuery, error) {
	q := catalog.ListQuery{
		Status: fallback,
		Search: strings.TrimSpace(c.Query("search")),
		Tag:    strings.TrimSpace(c.Query("tag")),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 0),
	}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return q, badRequest("Invalid status")
		}
		q.Status = &status
	}
	return q, nil
}

func (s *Server) listProjects(c *fiber.Ctx) error {
	approved := models.StatusApproved
	q, err := listQuery(c, &approved)
	if err != nil {
		return err
	}
	page, err := s.svc.List(c.UserContext(), q, catalog.DefaultPublicLimit)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (s *Server) featuredProjects(c *fiber.Ctx) error {
	projects, err := s.svc.Featured(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(projects)
}

func (s *Server) projectByID(c *fiber.Ctx) error {
	project, err := s.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(project)
}

func (s *Server) projectByMint(c *fiber.Ctx) error {
	project, err := s.svc.GetByTokenMint(c.UserContext(), c.Params("tokenMint"))
	if err != nil {
		return err
	}
	return c.JSON(project)
}

func (s *Server) submitProject(c *fiber.Ctx) error {
	var form models.SubmissionForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest("Invalid request body")
	}

	project, err := s.svc.Submit(c.UserContext(), identityFrom(c), form)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (s *Server) toggleFavorite(c *fiber.Ctx) error {
	favorited, err := s.svc.ToggleFavorite(c.UserContext(), identityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}

func (s *Server) favoriteState(c *fiber.Ctx) error {
	favorited, err := s.svc.IsFavorite(c.UserContext(), identityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}
