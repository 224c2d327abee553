package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"launchpad/internal/models"
	"launchpad/internal/oracle"
)

// ErrInvalidWallet is returned for addresses that are not ed25519 public keys
var ErrInvalidWallet = errors.New("invalid wallet address")

// UserResolver creates the user row of a wallet on first sign-in
type UserResolver interface {
	EnsureUser(ctx context.Context, wallet string) (*models.User, error)
}

// Challenge is a pending sign-in request
type Challenge struct {
	WalletAddress string    `json:"walletAddress"`
	Message       string    `json:"message"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Session is the result of a successful sign-in
type Session struct {
	Token         string    `json:"token"`
	WalletAddress string    `json:"walletAddress"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Authenticator runs the challenge and signature exchange that yields a wallet token
type Authenticator struct {
	issuer *Issuer
	nonces NonceStore
	users  UserResolver
	logger logrus.FieldLogger
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(issuer *Issuer, nonces NonceStore, users UserResolver, logger logrus.FieldLogger) *Authenticator {
	return &Authenticator{issuer: issuer, nonces: nonces, users: users, logger: logger}
}

// Issuer returns the token issuer used to verify bearer tokens
func (a *Authenticator) Issuer() *Issuer {
	return a.issuer
}

// Challenge stores a fresh nonce for wallet and returns the message to sign
func (a *Authenticator) Challenge(ctx context.Context, wallet string) (*Challenge, error) {
	if err := oracle.ValidateAddress(wallet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}

	nonce := uuid.NewString()
	if err := a.nonces.Put(ctx, wallet, nonce); err != nil {
		return nil, err
	}
	return &Challenge{
		WalletAddress: wallet,
		Message:       ChallengeMessage(nonce),
		ExpiresAt:     time.Now().Add(NonceTTL),
	}, nil
}

// Login verifies the signed challenge and issues a token, creating the user on first sight
func (a *Authenticator) Login(ctx context.Context, wallet, message, signature string) (*Session, error) {
	if err := oracle.ValidateAddress(wallet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}

	nonce, err := a.nonces.Take(ctx, wallet)
	if err != nil {
		return nil, err
	}
	expected := ChallengeMessage(nonce)
	if message != "" && message != expected {
		return nil, fmt.Errorf("%w: message does not match challenge", ErrInvalidSignature)
	}
	if err := VerifySignature(wallet, expected, signature); err != nil {
		a.logger.WithField("wallet", wallet).Warn("Rejected wallet signature")
		return nil, err
	}

	user, err := a.users.EnsureUser(ctx, wallet)
	if err != nil {
		return nil, err
	}

	token, expires, err := a.issuer.Issue(wallet, user.ID)
	if err != nil {
		return nil, err
	}
	a.logger.WithField("wallet", wallet).Info("Wallet signed in")
	return &Session{Token: token, WalletAddress: wallet, ExpiresAt: expires}, nil
}
