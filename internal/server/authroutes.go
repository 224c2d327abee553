package server

import (
	"github.com/gofiber/fiber/v2"
)

type challengeRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type walletLoginRequest struct {
	WalletAddress string `json:"walletAddress"`
	Message       string `json:"message"`
	Signature     string `json:"signature"`
}

func (s *Server) challenge(c *fiber.Ctx) error {
	var req challengeRequest
	if err := c.BodyParser(&req); err != nil || req.WalletAddress == "" {
		return badRequest("Missing required fields")
	}
	challenge, err := s.auth.Challenge(c.UserContext(), req.WalletAddress)
	if err != nil {
		return err
	}
	return c.JSON(challenge)
}

func (s *Server) walletLogin(c *fiber.Ctx) error {
	var req walletLoginRequest
	if err := c.BodyParser(&req); err != nil || req.WalletAddress == "" || req.Signature == "" {
		return badRequest("Missing required fields")
	}
	session, err := s.auth.Login(c.UserContext(), req.WalletAddress, req.Message, req.Signature)
	if err != nil {
		return err
	}
	return c.JSON(session)
}
