package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// ErrInvalidSignature is returned when a signed challenge does not verify
var ErrInvalidSignature = errors.New("invalid signature")

// ChallengeMessage is the text a wallet signs to prove ownership
func ChallengeMessage(nonce string) string {
	return "Sign in to Launchpad: " + nonce
}

// decodePublicKey converts a base58 Solana address into its ed25519 public key
func decodePublicKey(wallet string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length: %d", len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// VerifySignature checks a base58 ed25519 signature of message by wallet
func VerifySignature(wallet, message, signature string) error {
	pub, err := decodePublicKey(wallet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: invalid signature length: %d", ErrInvalidSignature, len(sig))
	}

	if !ed25519.Verify(pub, []byte(message), sig) {
		return ErrInvalidSignature
	}
	return nil
}
