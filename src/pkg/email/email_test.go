package email

import (
	"context"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/util"
)

func withFakeSender(t *testing.T, provider Provider) *[]Message {
	t.Helper()
	sent := []Message{}
	original := senders[provider]
	senders[provider] = func(ctx context.Context, message Message) (string, *xerr.Error) {
		sent = append(sent, message)
		return "fake-id", nil
	}
	t.Cleanup(func() { senders[provider] = original })
	return &sent
}

func TestSendMessageDryRunDoesNotCallProvider(t *testing.T) {
	sent := withFakeSender(t, ProviderMailgun)

	e := SendMessage(ProviderMailgun, util.Ptr(false), "ops@example.com", []string{"cfo@example.com"}, "Digest", "text", "<p>html</p>", nil)
	require.Nil(t, e)
	assert.Empty(t, *sent)

	e = SendMessage(ProviderMailgun, nil, "ops@example.com", []string{"cfo@example.com"}, "Digest", "text", "", nil)
	require.Nil(t, e)
	assert.Empty(t, *sent)
}

func TestSendMessageDelivers(t *testing.T) {
	sent := withFakeSender(t, ProviderSendgrid)

	attachment := Attachment{Filename: "report.csv", ContentType: "text/csv", Data: []byte("a,b\n")}
	e := SendMessage(
		ProviderSendgrid, util.Ptr(true), "ops@example.com",
		[]string{" cfo@example.com ", "", "ceo@example.com"},
		"Digest", "text", "<p>html</p>", []Attachment{attachment},
	)
	require.Nil(t, e)
	require.Len(t, *sent, 1)

	message := (*sent)[0]
	assert.Equal(t, []string{"cfo@example.com", "ceo@example.com"}, message.Recipients)
	assert.Equal(t, "Digest", message.Subject)
	assert.Equal(t, "<p>html</p>", message.HTML)
	require.Len(t, message.Attachments, 1)
	assert.Equal(t, "report.csv", message.Attachments[0].Filename)
}

func TestSendMessageValidates(t *testing.T) {
	send := util.Ptr(true)

	e := SendMessage(ProviderMailgun, send, "", []string{"a@example.com"}, "s", "t", "", nil)
	assert.NotNil(t, e)

	e = SendMessage(ProviderMailgun, send, "ops@example.com", []string{" "}, "s", "t", "", nil)
	assert.NotNil(t, e)

	e = SendMessage(Provider("pigeon"), send, "ops@example.com", []string{"a@example.com"}, "s", "t", "", nil)
	assert.NotNil(t, e)
}

func TestMailgunRequiresEnv(t *testing.T) {
	t.Setenv(EnvMailgunDomain, "")
	t.Setenv(EnvMailgunAPIKey, "")

	_, e := sendMailgun(context.Background(), Message{Sender: "a@example.com", Recipients: []string{"b@example.com"}})
	assert.NotNil(t, e)
}

func TestSendgridRequiresEnv(t *testing.T) {
	t.Setenv(EnvSendgridKey, "")

	_, e := sendSendgrid(context.Background(), Message{Sender: "a@example.com", Recipients: []string{"b@example.com"}})
	assert.NotNil(t, e)
}

func TestCheckSendgridResponse(t *testing.T) {
	assert.Nil(t, checkSendgridResponse(&rest.Response{StatusCode: 202}))
	assert.NotNil(t, checkSendgridResponse(&rest.Response{StatusCode: 401, Body: "unauthorized"}))
	assert.NotNil(t, checkSendgridResponse(nil))
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider(" SES ")
	assert.True(t, ok)
	assert.Equal(t, ProviderSES, p)

	_, ok = ParseProvider("smtp")
	assert.False(t, ok)

	assert.Equal(t, []string{EnvSendgridKey}, RequiredEnv(ProviderSendgrid))
}

func TestShouldSend(t *testing.T) {
	assert.True(t, Config{}.ShouldSend())
	assert.False(t, Config{Send: util.Ptr(false)}.ShouldSend())
}
