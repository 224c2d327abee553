package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"launchpad/internal/auth"
	"launchpad/internal/catalog"
)

var kindStatus = map[catalog.Kind]int{
	catalog.KindValidation:   fiber.StatusBadRequest,
	catalog.KindUnauthorized: fiber.StatusUnauthorized,
	catalog.KindForbidden:    fiber.StatusForbidden,
	catalog.KindNotFound:     fiber.StatusNotFound,
	catalog.KindConflict:     fiber.StatusConflict,
	catalog.KindExternal:     fiber.StatusBadGateway,
	catalog.KindInternal:     fiber.StatusInternalServerError,
}

func statusFor(err error) int {
	var (
		ce *catalog.Error
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ce):
		return kindStatus[ce.Kind]
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, auth.ErrInvalidWallet):
		return fiber.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidSignature), errors.Is(err, auth.ErrChallengeExpired), errors.Is(err, auth.ErrInvalidToken):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(err error, status int) string {
	var (
		ce *catalog.Error
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ce) && ce.Kind != catalog.KindInternal:
		return ce.Message
	case errors.As(err, &fe):
		return fe.Message
	case errors.Is(err, auth.ErrInvalidWallet):
		return "Invalid wallet address"
	case errors.Is(err, auth.ErrChallengeExpired):
		return "Challenge expired"
	case errors.Is(err, auth.ErrInvalidSignature):
		return "Invalid signature"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	}
	if status >= fiber.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// errorHandler renders every handler error as {"error": ..., "details": ...}
func errorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := statusFor(err)
		body := fiber.Map{"error": messageFor(err, status)}

		var ce *catalog.Error
		if errors.As(err, &ce) && len(ce.Fields) > 0 {
			body["details"] = ce.Fields
		}

		if status >= fiber.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("Request failed")
		}
		return c.Status(status).JSON(body)
	}
}

func badRequest(message string) error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}
