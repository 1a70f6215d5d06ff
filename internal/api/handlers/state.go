package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rohits-web03/foodlink/internal/models"
	"github.com/rohits-web03/foodlink/internal/utils"
)

// OAuthState is the metadata threaded through the Google redirect: which
// flow started it and, for registrations, which role was chosen.
type OAuthState struct {
	Flow string      `json:"flow"` // "login" or "register"
	Role models.Role `json:"role,omitempty"`
}

// EncodeState packs the metadata with a random nonce into the OAuth state
// parameter, format "nonce.payload", both base64url.
func EncodeState(s OAuthState) (string, error) {
	nonce, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}

	return nonce + "." + base64.RawURLEncoding.EncodeToString(payload), nil
}

// DecodeState recovers the metadata from the state parameter.
func DecodeState(state string) (OAuthState, error) {
	var s OAuthState

	parts := strings.Split(state, ".")
	if len(parts) != 2 {
		return s, fmt.Errorf("invalid state format")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return s, fmt.Errorf("failed to decode state payload: %w", err)
	}
	if err := json.Unmarshal(payload, &s); err != nil {
		return s, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return s, nil
}
