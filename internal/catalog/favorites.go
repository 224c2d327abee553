package catalog

import (
	"context"
	"errors"

	"launchpad/internal/models"
	"launchpad/internal/telemetry"
)

// ToggleFavorite flips the caller's favorite on a project and reports the resulting state
func (s *Service) ToggleFavorite(ctx context.Context, id Identity, projectID string) (bool, error) {
	if err := requireWallet(id); err != nil {
		return false, err
	}

	var favorited bool
	err := s.store.WithTx(ctx, func(tx Queries) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		user, err := s.ensureUser(ctx, tx, id.WalletAddress)
		if err != nil {
			return err
		}

		now := s.now()
		removed, err := tx.RemoveFavorite(ctx, user.ID, projectID)
		if err != nil {
			return err
		}
		if removed {
			favorited = false
			return tx.AdjustFavorites(ctx, projectID, -1, now)
		}

		added, err := tx.AddFavorite(ctx, &models.ProjectFavorite{
			UserID:    user.ID,
			ProjectID: projectID,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}
		favorited = true
		if !added {
			// a concurrent toggle inserted the row first
			return nil
		}
		return tx.AdjustFavorites(ctx, projectID, 1, now)
	})
	if err != nil {
		return false, classify("toggle favorite", err, projectNotFound)
	}

	action := "removed"
	if favorited {
		action = "added"
	}
	telemetry.FavoriteToggles.WithLabelValues(action).Inc()
	return favorited, nil
}

// IsFavorite reports whether the caller has favorited the project
func (s *Service) IsFavorite(ctx context.Context, id Identity, projectID string) (bool, error) {
	if err := requireWallet(id); err != nil {
		return false, err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return false, classify("load project", err, projectNotFound)
	}
	user, err := s.store.GetUserByWallet(ctx, id.WalletAddress)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return false, nil
		}
		return false, internal("load user", err)
	}
	ok, err := s.store.HasFavorite(ctx, user.ID, projectID)
	if err != nil {
		return false, internal("load favorite", err)
	}
	return ok, nil
}
