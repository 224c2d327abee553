package memstore

import (
	"strings"
	"time"

	"github.com/lib/pq"

	"launchpad/internal/models"
)

// Strings handed to the store may alias a request buffer that is reused
// after the handler returns, so anything kept as a key or identifier is
// cloned on the way in.

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := strings.Clone(*s)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyTags(tags pq.StringArray) pq.StringArray {
	if tags == nil {
		return nil
	}
	out := make(pq.StringArray, len(tags))
	for i, t := range tags {
		out[i] = strings.Clone(t)
	}
	return out
}

// copyProject returns p with no memory shared with the original
func copyProject(p models.Project) models.Project {
	p.ID = strings.Clone(p.ID)
	p.TokenMint = strings.Clone(p.TokenMint)
	p.TokenAddress = strings.Clone(p.TokenAddress)
	p.SubmittedBy = strings.Clone(p.SubmittedBy)
	p.Website = copyString(p.Website)
	p.Twitter = copyString(p.Twitter)
	p.Telegram = copyString(p.Telegram)
	p.Discord = copyString(p.Discord)
	p.Github = copyString(p.Github)
	p.LogoURL = copyString(p.LogoURL)
	p.BannerURL = copyString(p.BannerURL)
	p.Tags = copyTags(p.Tags)
	p.RejectionReason = copyString(p.RejectionReason)
	p.ApprovedAt = copyTime(p.ApprovedAt)
	p.ApprovedBy = copyString(p.ApprovedBy)
	if p.Owner != nil {
		owner := models.Owner{
			WalletAddress: p.Owner.WalletAddress,
			Username:      copyString(p.Owner.Username),
		}
		p.Owner = &owner
	}
	return p
}

func copyUser(u models.User) models.User {
	u.ID = strings.Clone(u.ID)
	u.WalletAddress = strings.Clone(u.WalletAddress)
	u.Username = copyString(u.Username)
	return u
}

func copyAdmin(a models.Admin) models.Admin {
	a.ID = strings.Clone(a.ID)
	a.WalletAddress = strings.Clone(a.WalletAddress)
	return a
}
