package model

import "time"

// APIKey grants read access to a single solution's exported configuration.
type APIKey struct {
	ID         string     `json:"id"`
	SolutionID string     `json:"solutionId"`
	Name       string     `json:"name"`
	Token      string     `json:"-"`
	IsActive   bool       `json:"isActive"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

// ValidAt reports whether the key authorizes access at the given instant.
// A key expiring exactly at t is already expired.
func (k *APIKey) ValidAt(t time.Time) bool {
	if !k.IsActive {
		return false
	}
	if k.ExpiresAt != nil && !k.ExpiresAt.After(t) {
		return false
	}
	return true
}

type CreateAPIKeyReq struct {
	Name        string `json:"keyName" binding:"required"`
	ExpiresDays *int   `json:"expiresDays"`
}

// CreatedAPIKey is the only response that carries the full token.
type CreatedAPIKey struct {
	APIKey
	Token string `json:"token"`
}

// MaskedAPIKey exposes only the token tail in listings.
type MaskedAPIKey struct {
	ID          string     `json:"id"`
	SolutionID  string     `json:"solutionId"`
	Name        string     `json:"name"`
	TokenSuffix string     `json:"tokenSuffix"`
	IsActive    bool       `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Masked strips the token down to its last four characters.
func (k *APIKey) Masked() MaskedAPIKey {
	suffix := k.Token
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return MaskedAPIKey{
		ID:          k.ID,
		SolutionID:  k.SolutionID,
		Name:        k.Name,
		TokenSuffix: suffix,
		IsActive:    k.IsActive,
		ExpiresAt:   k.ExpiresAt,
		LastUsedAt:  k.LastUsedAt,
		CreatedAt:   k.CreatedAt,
	}
}
