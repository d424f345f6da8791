package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenModes struct{}

func (brokenModes) DemoMode(ctx context.Context) (bool, error) { return false, errors.New("locked") }
func (brokenModes) SetDemoMode(ctx context.Context, on bool) error {
	return errors.New("locked")
}

func TestProvider_Credentials(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		provider  *Provider
		wantToken string
		wantDemo  bool
	}{
		{name: "real token", provider: NewProvider("tok", "", NewMemoryModes(false)), wantToken: "tok"},
		{name: "no mode store", provider: NewProvider("tok", "", nil), wantToken: "tok"},
		{name: "demo default sentinel", provider: NewProvider("tok", "", NewMemoryModes(true)), wantToken: DefaultDemoToken, wantDemo: true},
		{name: "demo custom sentinel", provider: NewProvider("", "guest", NewMemoryModes(true)), wantToken: "guest", wantDemo: true},
		{name: "missing token", provider: NewProvider("", "", NewMemoryModes(false)), wantToken: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := tt.provider.Credentials(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, creds.Token)
			assert.Equal(t, tt.wantDemo, creds.Demo)
		})
	}
}

func TestProvider_EnableDemo(t *testing.T) {
	ctx := context.Background()
	modes := NewMemoryModes(false)
	p := NewProvider("tok", "", modes)

	before, err := p.Credentials(ctx)
	require.NoError(t, err)
	assert.False(t, before.Demo)

	require.NoError(t, p.EnableDemo(ctx))

	after, err := p.Credentials(ctx)
	require.NoError(t, err)
	assert.True(t, after.Demo)
	assert.Equal(t, DefaultDemoToken, after.Token)
	assert.False(t, before.Demo, "credentials already handed out are not affected")
}

func TestProvider_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider("tok", "", brokenModes{}).Credentials(ctx)
	assert.Error(t, err)

	assert.Error(t, NewProvider("tok", "", nil).EnableDemo(ctx))
}
