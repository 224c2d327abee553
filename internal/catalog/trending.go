package catalog

import (
	"context"
	"sort"

	"launchpad/internal/models"
)

// Trending ranks APPROVED projects by swap volume, then views, then favorites
func (s *Service) Trending(ctx context.Context, limit int) ([]models.Project, error) {
	limit = clampLimit(limit, DefaultTrendingLimit)

	projects, err := s.store.TrendingCandidates(ctx, limit)
	if err != nil {
		return nil, internal("rank trending projects", err)
	}
	projects = Rank(projects)
	if len(projects) > limit {
		projects = projects[:limit]
	}
	return projects, nil
}

// Rank orders projects for the trending list. Ties after the engagement figures
// fall back to newest first and then id, so the order is total.
func Rank(projects []models.Project) []models.Project {
	ranked := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status == models.StatusApproved {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankedBefore(&ranked[i], &ranked[j])
	})
	return ranked
}

func rankedBefore(a, b *models.Project) bool {
	if c := a.SwapVolume.Cmp(b.SwapVolume); c != 0 {
		return c > 0
	}
	if a.Views != b.Views {
		return a.Views > b.Views
	}
	if a.Favorites != b.Favorites {
		return a.Favorites > b.Favorites
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
