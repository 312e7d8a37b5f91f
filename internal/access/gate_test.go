package access_test

import (
	"testing"

	"click-collect/internal/access"
	"click-collect/internal/data/entity"

	"github.com/stretchr/testify/assert"
)

func TestGateDecide(t *testing.T) {
	gate := access.NewGate(access.DefaultPaths())

	tests := []struct {
		name     string
		path     string
		identity bool
		role     entity.Role
		want     string
	}{
		{"anonymous merchant dashboard", "/merchant/dashboard", false, "", "/login?redirect=%2Fmerchant%2Fdashboard"},
		{"anonymous cart", "/cart", false, "", "/login?redirect=%2Fcart"},
		{"anonymous onboarding still needs identity", "/merchant/setup", false, "", "/login?redirect=%2Fmerchant%2Fsetup"},
		{"anonymous home", "/", false, "", ""},
		{"anonymous login", "/login", false, "", ""},
		{"anonymous auth callback", "/auth/callback", false, "", ""},
		{"customer merchant dashboard", "/merchant/dashboard", true, entity.RoleCustomer, "/"},
		{"customer merchant root", "/merchant", true, entity.RoleCustomer, "/"},
		{"customer merchant setup", "/merchant/setup", true, entity.RoleCustomer, ""},
		{"customer merchant pending", "/merchant/pending", true, entity.RoleCustomer, ""},
		{"customer lookalike path", "/merchants", true, entity.RoleCustomer, ""},
		{"merchant pending", "/merchant/pending", true, entity.RoleMerchant, ""},
		{"merchant dashboard", "/merchant/dashboard", true, entity.RoleMerchant, ""},
		{"merchant subtree root", "/merchant", true, entity.RoleMerchant, ""},
		{"merchant nested page", "/merchant/products/new", true, entity.RoleMerchant, ""},
		{"merchant login", "/login", true, entity.RoleMerchant, "/merchant/dashboard"},
		{"customer login", "/login", true, entity.RoleCustomer, "/"},
		{"customer cart", "/cart", true, entity.RoleCustomer, ""},
		{"unknown role kept out of merchant", "/merchant/orders", true, entity.Role("admin"), "/"},
		{"trailing slash normalized", "/merchant/dashboard/", true, entity.RoleCustomer, "/"},
		{"dot segments normalized", "/merchant/setup/../dashboard", true, entity.RoleCustomer, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Decide(tt.path, tt.identity, tt.role)
			if tt.want == "" {
				assert.True(t, d.Allowed(), "got %s", d)
				assert.Empty(t, d.Location())
				return
			}
			assert.False(t, d.Allowed())
			assert.Equal(t, tt.want, d.Location())
		})
	}
}

func TestGateRedirectPreservesPath(t *testing.T) {
	gate := access.NewGate(access.DefaultPaths())

	d := gate.Decide("/merchant/dashboard", false, "")

	assert.Equal(t, access.Redirect, d.Verdict)
	assert.Equal(t, "/login", d.Target)
	assert.Equal(t, "/merchant/dashboard", d.Query.Get(access.RedirectParam))
}

func TestGateExtraPublicPrefixes(t *testing.T) {
	paths := access.DefaultPaths()
	paths.Public = []string{"/products", "/signup"}
	gate := access.NewGate(paths)

	assert.True(t, gate.Decide("/products/123", false, "").Allowed())
	assert.True(t, gate.Decide("/signup", false, "").Allowed())
	assert.False(t, gate.Decide("/productsx", false, "").Allowed())
	assert.True(t, gate.IsPublic("/auth/callback/google"))
}
