package commands

import (
	"encoding/json"
	"testing"

	"github.com/dyluth/careersync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listPartners(t *testing.T, cfg string, args ...string) []domain.Partner {
	t.Helper()
	out, err := executeCommand(t, cfg, append([]string{"partners", "list", "-o", "json"}, args...)...)
	require.NoError(t, err)

	var partners []domain.Partner
	require.NoError(t, json.Unmarshal([]byte(out), &partners))
	return partners
}

func partnerByName(partners []domain.Partner, name string) (domain.Partner, bool) {
	for _, p := range partners {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Partner{}, false
}

func TestPartnersCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	t.Run("add defaults to active", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "partners", "add",
			"--name", "Harbour College",
			"--category", "education",
			"--website", "https://harbour.example")
		require.NoError(t, err)

		p, ok := partnerByName(listPartners(t, cfg), "Harbour College")
		require.True(t, ok)
		assert.Equal(t, domain.PartnerStatusActive, p.Status)
		assert.NotEmpty(t, p.ID)
	})

	t.Run("add rejects invalid website", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "partners", "add", "--name", "Broken", "--category", "education", "--website", "not a url")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to add partner")
	})

	t.Run("toggle hides partner from active list", func(t *testing.T) {
		_, err := executeCommand(t, cfg, "partners", "toggle", "partner-techcorp")
		require.NoError(t, err)

		_, ok := partnerByName(listPartners(t, cfg, "--active"), "TechCorp")
		assert.False(t, ok)

		p, ok := partnerByName(listPartners(t, cfg), "TechCorp")
		require.True(t, ok)
		assert.Equal(t, domain.PartnerStatusInactive, p.Status)
	})

	t.Run("category filter", func(t *testing.T) {
		for _, p := range listPartners(t, cfg, "--category", "education") {
			assert.Equal(t, "education", p.Category)
		}
	})

	t.Run("delete", func(t *testing.T) {
		p, ok := partnerByName(listPartners(t, cfg), "Harbour College")
		require.True(t, ok)

		_, err := executeCommand(t, cfg, "partners", "delete", p.ID)
		require.NoError(t, err)

		_, ok = partnerByName(listPartners(t, cfg), "Harbour College")
		assert.False(t, ok)
	})
}
