package server

import (
	"github.com/gofiber/fiber/v2"

	"launchpad/internal/catalog"
)

func (s *Server) projectMetrics(c *fiber.Ctx) error {
	view, err := s.svc.GetMetrics(c.UserContext(), c.Params("id"), c.QueryInt("days", catalog.DefaultMetricsDays))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

func (s *Server) reportMetrics(c *fiber.Ctx) error {
	var report catalog.MetricsReport
	if err := c.BodyParser(&report); err != nil {
		return badRequest("Invalid request body")
	}
	metric, err := s.svc.ReportMetrics(c.UserContext(), identityFrom(c), c.Params("id"), report)
	if err != nil {
		return err
	}
	return c.JSON(metric)
}

func (s *Server) trending(c *fiber.Ctx) error {
	projects, err := s.svc.Trending(c.UserContext(), c.QueryInt("limit", catalog.DefaultTrendingLimit))
	if err != nil {
		return err
	}
	return c.JSON(projects)
}
