package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// portalTokenBytes yields 192 bits of entropy, comfortably above the 128-bit
// floor required for an unguessable bearer credential.
const portalTokenBytes = 24

// NewPortalToken returns a URL-safe random token used as the sole credential
// for the public client portal. It must always come from a CSPRNG; guessable
// tokens grant access to another client's onboarding.
func NewPortalToken() (string, error) {
	buf := make([]byte, portalTokenBytes)

	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate portal token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
