package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"launchpad/internal/auth"
	"launchpad/internal/catalog"
)

const identityKey = "identity"

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="launchpad"`)
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

// bearerClaims extracts and verifies the wallet token of the request
func (s *Server) bearerClaims(c *fiber.Ctx) (*auth.Claims, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, unauthorized(c, "No token provided")
	}

	// Scheme comparison is case-insensitive as per RFC 7235
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, unauthorized(c, "Invalid authorization format. Use Bearer authentication")
	}

	claims, err := s.auth.Issuer().Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, unauthorized(c, "Invalid token")
	}
	return claims, nil
}

// walletMiddleware requires a valid wallet token
func (s *Server) walletMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.bearerClaims(c)
		if err != nil {
			return err
		}
		c.Locals(identityKey, catalog.Identity{WalletAddress: claims.WalletAddress})
		return c.Next()
	}
}

// adminMiddleware requires a wallet token whose wallet is provisioned as an admin
func (s *Server) adminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.bearerClaims(c)
		if err != nil {
			return err
		}
		id, err := s.svc.ResolveAdmin(c.UserContext(), claims.WalletAddress)
		if err != nil {
			return err
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) catalog.Identity {
	id, _ := c.Locals(identityKey).(catalog.Identity)
	return id
}
