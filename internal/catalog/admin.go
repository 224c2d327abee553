package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"launchpad/internal/models"
)

// Stats returns the admin dashboard figures
func (s *Service) Stats(ctx context.Context, id Identity) (*models.Stats, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, internal("load stats", err)
	}
	return stats, nil
}

// GrantAdmin provisions wallet with role, replacing any role it already had
func (s *Service) GrantAdmin(ctx context.Context, wallet string, role models.Role) (*models.Admin, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, validationError("Validation failed", map[string]string{"wallet": "is required"})
	}
	if !role.Valid() {
		return nil, validationError("Validation failed", map[string]string{"role": "is not a known role"})
	}

	now := s.now()
	admin, err := s.store.UpsertAdmin(ctx, &models.Admin{
		ID:            s.newID(),
		WalletAddress: wallet,
		Role:          role,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, internal("grant admin", err)
	}

	s.logger.WithFields(logrus.Fields{
		"wallet": wallet,
		"role":   role,
	}).Info("Admin granted")
	return admin, nil
}

// ResolveAdmin turns a wallet into an admin identity
func (s *Service) ResolveAdmin(ctx context.Context, wallet string) (Identity, error) {
	if wallet == "" {
		return Identity{}, unauthorized("Authentication required")
	}
	admin, err := s.store.GetAdminByWallet(ctx, wallet)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return Identity{}, forbidden("Admin access required")
		}
		return Identity{}, internal("load admin", err)
	}
	return Identity{
		WalletAddress: admin.WalletAddress,
		AdminID:       admin.ID,
		Role:          admin.Role,
	}, nil
}
