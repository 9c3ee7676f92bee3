package service

import (
	"context"
)

// ProviderLister describes a configured provider chain.
type ProviderLister interface {
	Names() []string
	Offline() bool
}

// ProviderInfo reports which providers will answer chat turns.
type ProviderInfo struct {
	// Providers are listed in the order they are tried; the local fallback
	// responder is always last.
	Providers []string `json:"providers" example:"openai,groq,fallback"`
	Offline   bool     `json:"offline"`
	WebSearch bool     `json:"webSearch"`
}

// ProviderService reports the provider configuration chosen at startup.
type ProviderService struct {
	chain     ProviderLister
	webSearch bool
}

// NewProviderService creates a new ProviderService.
func NewProviderService(chain ProviderLister, webSearch bool) *ProviderService {
	return &ProviderService{chain: chain, webSearch: webSearch}
}

// List returns the provider chain in preference order.
func (s *ProviderService) List(ctx context.Context) (*ProviderInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ProviderInfo{
		Providers: s.chain.Names(),
		Offline:   s.chain.Offline(),
		WebSearch: s.webSearch,
	}, nil
}
