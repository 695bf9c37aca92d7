/*
Package email delivers messages through Mailgun, SendGrid or Amazon SES.

All providers take the same arguments: a sender, a list of recipients, a
subject, plain text and HTML bodies and optional attachments.
*/
package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
)

type Provider string

const (
	ProviderMailgun  Provider = "mailgun"
	ProviderSendgrid Provider = "sendgrid"
	ProviderSES      Provider = "ses"
)

func ParseProvider(s string) (Provider, bool) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderMailgun, ProviderSendgrid, ProviderSES:
		return p, true
	}
	return "", false
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is what every sender receives.
type Message struct {
	Sender      string
	Recipients  []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type sendFunc func(ctx context.Context, message Message) (id string, e *xerr.Error)

// senders is a variable so tests can swap providers for fakes.
var senders = map[Provider]sendFunc{
	ProviderMailgun:  sendMailgun,
	ProviderSendgrid: sendSendgrid,
	ProviderSES:      sendSES,
}

const sendTimeout = 30 * time.Second

/*
SendMessage sends one message through provider.

When send is nil or false the message is only logged, which is how digests
are previewed from the CLI.
*/
func SendMessage(
	provider Provider, send *bool,
	sender string, recipients []string, subject, text, html string,
	attachments []Attachment,
) (e *xerr.Error) {
	return SendMessageContext(context.Background(), provider, send, sender, recipients, subject, text, html, attachments)
}

func SendMessageContext(
	ctx context.Context, provider Provider, send *bool,
	sender string, recipients []string, subject, text, html string,
	attachments []Attachment,
) (e *xerr.Error) {
	recipients = cleanRecipients(recipients)
	if strings.TrimSpace(sender) == "" {
		return xerr.NewError(fmt.Errorf("sender is empty"), "validate message", subject)
	}
	if len(recipients) == 0 {
		return xerr.NewError(fmt.Errorf("no recipients"), "validate message", subject)
	}

	sendFn, ok := senders[provider]
	if !ok {
		return xerr.NewError(fmt.Errorf("unknown provider '%s'", provider), "pick email provider", string(provider))
	}

	if send == nil || !*send {
		tl.Log(
			tl.Notice, palette.Yellow, "Not sending '%s' from '%s' to %s via %s (%s attachments)",
			subject, sender, strings.Join(recipients, ", "), provider, len(attachments),
		)
		tl.Log(tl.Verbose, palette.BlueDim, "Text body:\n```\n%s\n```", text)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := Message{
		Sender:      sender,
		Recipients:  recipients,
		Subject:     subject,
		Text:        text,
		HTML:        html,
		Attachments: attachments,
	}
	id, e := sendFn(ctx, message)
	if e != nil {
		return e
	}
	tl.Log(tl.Info1, palette.Green, "Sent '%s' to %s via %s, id '%s'", subject, len(recipients), provider, id)
	return nil
}

func cleanRecipients(recipients []string) (cleaned []string) {
	for _, recipient := range recipients {
		if trimmed := strings.TrimSpace(recipient); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func sendMailgun(ctx context.Context, message Message) (id string, e *xerr.Error) {
	domain := os.Getenv(EnvMailgunDomain)
	apiKey := os.Getenv(EnvMailgunAPIKey)
	if domain == "" || apiKey == "" {
		return "", xerr.NewError(fmt.Errorf("%s or %s not set", EnvMailgunDomain, EnvMailgunAPIKey), "configure mailgun", domain)
	}

	mg := mailgun.NewMailgun(domain, apiKey)
	if Cfg.MailgunAPIBase != "" {
		mg.SetAPIBase(strings.TrimRight(Cfg.MailgunAPIBase, "/") + "/v3")
	}

	m := mg.NewMessage(message.Sender, message.Subject, message.Text, message.Recipients...)
	if message.HTML != "" {
		m.SetHtml(message.HTML)
	}
	for _, attachment := range message.Attachments {
		m.AddBufferAttachment(attachment.Filename, attachment.Data)
	}

	_, id, err := mg.Send(ctx, m)
	if err != nil {
		return "", xerr.NewError(err, "send mailgun message", message.Subject)
	}
	return id, nil
}

func sendSendgrid(ctx context.Context, message Message) (id string, e *xerr.Error) {
	apiKey := os.Getenv(EnvSendgridKey)
	if apiKey == "" {
		return "", xerr.NewError(fmt.Errorf("%s not set", EnvSendgridKey), "configure sendgrid", "")
	}

	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail("", message.Sender))
	v3.Subject = message.Subject

	personalization := mail.NewPersonalization()
	for _, recipient := range message.Recipients {
		personalization.AddTos(mail.NewEmail("", recipient))
	}
	v3.AddPersonalizations(personalization)

	v3.AddContent(mail.NewContent("text/plain", message.Text))
	if message.HTML != "" {
		v3.AddContent(mail.NewContent("text/html", message.HTML))
	}

	for _, attachment := range message.Attachments {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(attachment.Data))
		a.SetType(attachment.ContentType)
		a.SetFilename(attachment.Filename)
		a.SetDisposition("attachment")
		v3.AddAttachment(a)
	}

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.SendWithContext(ctx, v3)
	if err != nil {
		return "", xerr.NewError(err, "send sendgrid message", message.Subject)
	}
	if e = checkSendgridResponse(response); e != nil {
		return "", e
	}
	return strings.Join(response.Headers["X-Message-Id"], ","), nil
}

func checkSendgridResponse(response *rest.Response) (e *xerr.Error) {
	if response == nil {
		return xerr.NewError(fmt.Errorf("empty response"), "send sendgrid message", "")
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return xerr.NewError(fmt.Errorf("status %d", response.StatusCode), "send sendgrid message", response.Body)
	}
	return nil
}

func sendSES(ctx context.Context, message Message) (id string, e *xerr.Error) {
	if len(message.Attachments) > 0 {
		tl.Log(tl.Warning, palette.PurpleBright, "SES simple messages carry no attachments, skipping %s", len(message.Attachments))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", xerr.NewError(err, "load AWS config", "")
	}
	client := sesv2.NewFromConfig(awsCfg)

	body := &sestypes.Body{
		Text: &sestypes.Content{Data: aws.String(message.Text), Charset: aws.String("UTF-8")},
	}
	if message.HTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(message.HTML), Charset: aws.String("UTF-8")}
	}

	output, err := client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.Sender),
		Destination:      &sestypes.Destination{ToAddresses: message.Recipients},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(message.Subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
	})
	if err != nil {
		return "", xerr.NewError(err, "send SES message", message.Subject)
	}
	return aws.ToString(output.MessageId), nil
}
