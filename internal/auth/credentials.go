// Package auth resolves the credential attached to backend calls.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwygoda/shopsearch/internal/domain"
)

// DefaultDemoToken is the sentinel credential sent in demo mode.
const DefaultDemoToken = "demo-token"

// Provider implements domain.CredentialSource.
// The demo flag is read from the mode store once per call, so a switch
// takes effect on the next session only.
type Provider struct {
	token     string
	demoToken string
	modes     domain.ModeStore
}

// NewProvider creates a Provider. A nil modes store means demo mode is never on.
func NewProvider(token, demoToken string, modes domain.ModeStore) *Provider {
	if demoToken == "" {
		demoToken = DefaultDemoToken
	}
	return &Provider{token: token, demoToken: demoToken, modes: modes}
}

// Credentials returns the credential for a new session.
func (p *Provider) Credentials(ctx context.Context) (domain.Credentials, error) {
	demo, err := p.Demo(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}
	if demo {
		return domain.Credentials{Token: p.demoToken, Demo: true}, nil
	}
	return domain.Credentials{Token: p.token}, nil
}

// Demo reports whether demo mode is on.
func (p *Provider) Demo(ctx context.Context) (bool, error) {
	if p.modes == nil {
		return false, nil
	}
	on, err := p.modes.DemoMode(ctx)
	if err != nil {
		return false, fmt.Errorf("read demo mode: %w", err)
	}
	return on, nil
}

// EnableDemo switches later sessions to the demo credential.
func (p *Provider) EnableDemo(ctx context.Context) error {
	if p.modes == nil {
		return fmt.Errorf("enable demo mode: no mode store configured")
	}
	return p.modes.SetDemoMode(ctx, true)
}

// MemoryModes is an in-process domain.ModeStore.
type MemoryModes struct {
	mu   sync.Mutex
	demo bool
}

// NewMemoryModes creates a store with the given initial flag.
func NewMemoryModes(demo bool) *MemoryModes {
	return &MemoryModes{demo: demo}
}

func (m *MemoryModes) DemoMode(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.demo, nil
}

func (m *MemoryModes) SetDemoMode(ctx context.Context, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.demo = on
	return nil
}
