package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProjectStatus is the moderation state of a listing
type ProjectStatus string

const (
	StatusPending  ProjectStatus = "PENDING"
	StatusApproved ProjectStatus = "APPROVED"
	StatusRejected ProjectStatus = "REJECTED"
	StatusFeatured ProjectStatus = "FEATURED"
	StatusArchived ProjectStatus = "ARCHIVED"
)

// Statuses lists every moderation state in display order
var Statuses = []ProjectStatus{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusFeatured,
	StatusArchived,
}

// DefaultRejectionReason is stored when an admin rejects without giving a reason
const DefaultRejectionReason = "Rejected by admin"

// Valid reports whether s is one of the known moderation states
func (s ProjectStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// StampsApproval reports whether entering s records the approving admin
func (s ProjectStatus) StampsApproval() bool {
	return s == StatusApproved || s == StatusFeatured
}

// ParseStatus converts user input into a ProjectStatus, accepting any letter case
func ParseStatus(raw string) (ProjectStatus, error) {
	s := ProjectStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown project status %q", raw)
	}
	return s, nil
}

// Owner carries the public fields of the submitting user
type Owner struct {
	WalletAddress string  `json:"walletAddress"`
	Username      *string `json:"username"`
}

// Project represents a token project listing
type Project struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Symbol      string  `json:"symbol" db:"symbol"`
	Description string  `json:"description" db:"description"`
	Website     *string `json:"website" db:"website"`
	Twitter     *string `json:"twitter" db:"twitter"`
	Telegram    *string `json:"telegram" db:"telegram"`
	Discord     *string `json:"discord" db:"discord"`
	Github      *string `json:"github" db:"github"`
	LogoURL     *string `json:"logoUrl" db:"logo_url"`
	BannerURL   *string `json:"bannerUrl" db:"banner_url"`

	Tags pq.StringArray `json:"tags" db:"tags"`

	TokenAddress  string `json:"tokenAddress" db:"token_address"`
	TokenMint     string `json:"tokenMint" db:"token_mint"`
	TokenDecimals int    `json:"tokenDecimals" db:"token_decimals"`
	TokenSupply   string `json:"tokenSupply" db:"token_supply"`

	Status          ProjectStatus `json:"status" db:"status"`
	RejectionReason *string       `json:"rejectionReason" db:"rejection_reason"`
	ApprovedAt      *time.Time    `json:"approvedAt" db:"approved_at"`
	ApprovedBy      *string       `json:"approvedBy" db:"approved_by"`

	Views     int64 `json:"views" db:"views"`
	Favorites int64 `json:"favorites" db:"favorites"`

	SwapVolume   decimal.Decimal `json:"swapVolume" db:"swap_volume"`
	Liquidity    decimal.Decimal `json:"liquidity" db:"liquidity"`
	Holders      int64           `json:"holders" db:"holders"`
	CurrentPrice decimal.Decimal `json:"currentPrice" db:"current_price"`

	SubmittedBy string    `json:"submittedBy" db:"submitted_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	Owner *Owner `json:"user,omitempty" db:"-"`
}

// Snapshot returns the current market figures of the project
func (p *Project) Snapshot() Snapshot {
	return Snapshot{
		SwapVolume: p.SwapVolume,
		Liquidity:  p.Liquidity,
		Holders:    p.Holders,
		Price:      p.CurrentPrice,
	}
}

// Snapshot is the set of market figures overwritten by every metrics report
type Snapshot struct {
	SwapVolume decimal.Decimal `json:"swapVolume"`
	Liquidity  decimal.Decimal `json:"liquidity"`
	Holders    int64           `json:"holders"`
	Price      decimal.Decimal `json:"price"`
}

// StatusChange describes the columns written by a moderation transition.
// ApprovedAt and ApprovedBy are only written when Approve is set.
type StatusChange struct {
	Status          ProjectStatus
	Approve         bool
	ApprovedAt      time.Time
	ApprovedBy      string
	ClearRejection  bool
	RejectionReason *string
	UpdatedAt       time.Time
}

// Apply writes the change onto an in-memory project record
func (c StatusChange) Apply(p *Project) {
	p.Status = c.Status
	if c.Approve {
		at := c.ApprovedAt
		by := c.ApprovedBy
		p.ApprovedAt = &at
		p.ApprovedBy = &by
	}
	if c.ClearRejection {
		p.RejectionReason = nil
	}
	if c.RejectionReason != nil {
		reason := *c.RejectionReason
		p.RejectionReason = &reason
	}
	p.UpdatedAt = c.UpdatedAt
}

// ProjectFilter narrows a project listing
type ProjectFilter struct {
	Status *ProjectStatus
	Search string
	Tag    string
	Offset int
	Limit  int
}
