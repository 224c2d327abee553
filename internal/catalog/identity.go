package catalog

import "launchpad/internal/models"

// Identity is the already-authenticated caller of a Service operation.
// A zero Identity is an anonymous caller.
type Identity struct {
	WalletAddress string
	// AdminID and Role are set only for wallets provisioned as admins
	AdminID string
	Role    models.Role
}

// ReporterIdentity returns the identity used by automated metric feeds
func ReporterIdentity(name string) Identity {
	return Identity{
		WalletAddress: "reporter:" + name,
		AdminID:       "reporter:" + name,
		Role:          models.RoleReporter,
	}
}

// Authenticated reports whether the caller presented a wallet
func (i Identity) Authenticated() bool {
	return i.WalletAddress != ""
}

// IsAdmin reports whether the caller may moderate projects
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin || i.Role == models.RoleSuperAdmin
}

// IsSuperAdmin reports whether the caller holds the elevated tier
func (i Identity) IsSuperAdmin() bool {
	return i.Role == models.RoleSuperAdmin
}

// CanReportMetrics reports whether the caller may append to the metrics ledger
func (i Identity) CanReportMetrics() bool {
	return i.IsAdmin() || i.Role == models.RoleReporter
}

func (i Identity) approver() string {
	if i.AdminID != "" {
		return i.AdminID
	}
	return i.WalletAddress
}

func requireWallet(id Identity) error {
	if !id.Authenticated() {
		return unauthorized("Authentication required")
	}
	return nil
}

func requireAdmin(id Identity) error {
	if !id.Authenticated() {
		return unauthorized("Authentication required")
	}
	if !id.IsAdmin() {
		return forbidden("Admin access required")
	}
	return nil
}
