package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-dashboard/src/pkg/email"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()

	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"companies", "fetch", "insights", "export", "digest", "test-email"}, names)

	fetch, _, err := root.Find([]string{"fetch"})
	require.NoError(t, err)
	assert.NotNil(t, fetch.Flags().Lookup("company"))
	assert.NotNil(t, fetch.Flags().Lookup("raw"))

	insightsCmd, _, err := root.Find([]string{"insights"})
	require.NoError(t, err)
	assert.NotNil(t, insightsCmd.Flags().Lookup("trends"))
	assert.NotNil(t, insightsCmd.Flags().Lookup("summary"))
}

func TestDeliveryFlagsFallBackToConfig(t *testing.T) {
	original := email.Cfg
	t.Cleanup(func() { email.Cfg = original })
	email.Cfg.Provider = "sendgrid"
	email.Cfg.Sender = "ops@example.com"
	email.Cfg.Recipients = []string{"cfo@example.com"}

	d := deliveryFlags{}
	provider, recipients, err := d.resolve()
	require.NoError(t, err)
	assert.Equal(t, email.ProviderSendgrid, provider)
	assert.Equal(t, []string{"cfo@example.com"}, recipients)
	assert.Equal(t, "ops@example.com", d.sender)

	d = deliveryFlags{provider: "ses", recipients: "a@example.com,b@example.com"}
	provider, recipients, err = d.resolve()
	require.NoError(t, err)
	assert.Equal(t, email.ProviderSES, provider)
	assert.Len(t, recipients, 2)
}

func TestDeliveryFlagsErrors(t *testing.T) {
	original := email.Cfg
	t.Cleanup(func() { email.Cfg = original })
	email.Cfg = email.DefaultValueConfig()

	d := deliveryFlags{provider: "fax"}
	_, _, err := d.resolve()
	assert.Error(t, err)

	d = deliveryFlags{}
	_, _, err = d.resolve()
	assert.ErrorContains(t, err, "no sender")

	d = deliveryFlags{sender: "ops@example.com"}
	_, _, err = d.resolve()
	assert.ErrorContains(t, err, "no recipients")
}
