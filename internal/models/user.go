package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the privilege tier of an admin account
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleReporter may only report market metrics
	RoleReporter Role = "REPORTER"
)

// Valid reports whether r is a known admin role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleReporter:
		return true
	}
	return false
}

// User is a wallet that has interacted with the directory
type User struct {
	ID            string    `json:"id" db:"id"`
	WalletAddress string    `json:"walletAddress" db:"wallet_address"`
	Username      *string   `json:"username" db:"username"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Admin is a wallet provisioned with moderation rights
type Admin struct {
	ID            string    `json:"id" db:"id"`
	WalletAddress string    `json:"walletAddress" db:"wallet_address"`
	Role          Role      `json:"role" db:"role"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// ProjectMetric is one immutable entry of a project's market history
type ProjectMetric struct {
	ID         string          `json:"id" db:"id"`
	ProjectID  string          `json:"projectId" db:"project_id"`
	SwapVolume decimal.Decimal `json:"swapVolume" db:"swap_volume"`
	Liquidity  decimal.Decimal `json:"liquidity" db:"liquidity"`
	Holders    int64           `json:"holders" db:"holders"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Date       time.Time       `json:"date" db:"date"`
}

// ProjectFavorite links a user to a project they marked as favorite
type ProjectFavorite struct {
	UserID    string    `json:"userId" db:"user_id"`
	ProjectID string    `json:"projectId" db:"project_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Stats aggregates the admin dashboard figures
type Stats struct {
	TotalProjects    int64 `json:"totalProjects" db:"total_projects"`
	PendingProjects  int64 `json:"pendingProjects" db:"pending_projects"`
	ApprovedProjects int64 `json:"approvedProjects" db:"approved_projects"`
	RejectedProjects int64 `json:"rejectedProjects" db:"rejected_projects"`
	FeaturedProjects int64 `json:"featuredProjects" db:"featured_projects"`
	ArchivedProjects int64 `json:"archivedProjects" db:"archived_projects"`
	TotalUsers       int64 `json:"totalUsers" db:"total_users"`
	TotalViews       int64 `json:"totalViews" db:"total_views"`
	TotalFavorites   int64 `json:"totalFavorites" db:"total_favorites"`
}
