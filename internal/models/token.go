package models

// TokenInfo represents the on-chain facts of a token mint as reported by the chain oracle.
// Decimals and Supply are copied onto a project at submission and never refreshed.
type TokenInfo struct {
	Mint            string  `json:"mint"`
	Decimals        int     `json:"decimals"`
	Supply          string  `json:"supply"`
	MintAuthority   *string `json:"mintAuthority"`
	FreezeAuthority *string `json:"freezeAuthority"`
}

// SubmissionForm represents the creator-supplied fields of a new project listing
type SubmissionForm struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	Symbol       string   `json:"symbol" validate:"required,min=1,max=10"`
	Description  string   `json:"description" validate:"required,min=10,max=5000"`
	Website      *string  `json:"website" validate:"omitempty,url"`
	Twitter      *string  `json:"twitter" validate:"omitempty,max=100"`
	Telegram     *string  `json:"telegram" validate:"omitempty,max=100"`
	Discord      *string  `json:"discord" validate:"omitempty,url"`
	Github       *string  `json:"github" validate:"omitempty,url"`
	TokenAddress string   `json:"tokenAddress" validate:"required,max=64"`
	TokenMint    string   `json:"tokenMint" validate:"required,max=64"`
	LogoURL      *string  `json:"logoUrl" validate:"omitempty,url"`
	BannerURL    *string  `json:"bannerUrl" validate:"omitempty,url"`
	Tags         []string `json:"tags" validate:"max=20,dive,min=1,max=32"`
}
