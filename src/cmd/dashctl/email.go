package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
	"erp-dashboard/src/pkg/digest"
	"erp-dashboard/src/pkg/email"
)

type deliveryFlags struct {
	provider   string
	sender     string
	recipients string
	send       bool
}

func (d *deliveryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.provider, "provider", "", "mailgun, sendgrid or ses (default from email config)")
	cmd.Flags().StringVar(&d.sender, "sender", "", "Sender's address (default from email config)")
	cmd.Flags().StringVar(&d.recipients, "recipients", "", "Comma separated recipients (default from email config)")
	cmd.Flags().BoolVar(&d.send, "send", false, "Actually send; without it the message is only logged")
}

// resolve fills unset flags from email.Cfg and checks the provider's env vars.
func (d *deliveryFlags) resolve() (provider email.Provider, recipients []string, err error) {
	if d.provider == "" {
		d.provider = email.Cfg.Provider
	}
	provider, ok := email.ParseProvider(d.provider)
	if !ok {
		return "", nil, fmt.Errorf("unknown email provider '%s'", d.provider)
	}
	if d.sender == "" {
		d.sender = email.Cfg.Sender
	}
	if d.sender == "" {
		return "", nil, fmt.Errorf("no sender: pass --sender or set email.sender")
	}

	recipients = email.Cfg.Recipients
	if d.recipients != "" {
		recipients = strings.Split(d.recipients, ",")
	}
	if len(recipients) == 0 {
		return "", nil, fmt.Errorf("no recipients: pass --recipients or set email.recipients")
	}

	if d.send {
		config.CheckIfEnvVarsPresent(email.RequiredEnv(provider)...)
	}
	return provider, recipients, nil
}

func newDigestCommand() *cobra.Command {
	var r rangeFlags
	var delivery deliveryFlags
	var htmlOut string
	var skipInsights bool

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Email the financial digest (summary, top rows, insights, CSV and charts attached)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, recipients, err := delivery.resolve()
			if err != nil {
				return err
			}

			application := buildApp(cmd.Context())
			view := application.Dashboard.LoadView(cmd.Context(), r.query())
			withInsights := !skipInsights && (digest.Cfg.WithInsights == nil || *digest.Cfg.WithInsights)
			d := digest.Build(cmd.Context(), view, application.Insights, withInsights)

			if htmlOut != "" {
				htmlText, e := digest.RenderHTML(d)
				if e != nil {
					return fmt.Errorf("%s", e)
				}
				if err := os.WriteFile(htmlOut, []byte(htmlText), 0o644); err != nil {
					return fmt.Errorf("write '%s': %w", htmlOut, err)
				}
				tl.Log(tl.Info1, palette.Green, "Saved digest preview to '%s'", htmlOut)
			}

			send := delivery.send && email.Cfg.ShouldSend()
			if e := digest.Send(cmd.Context(), d, provider, &send, delivery.sender, recipients); e != nil {
				return fmt.Errorf("%s", e)
			}
			return nil
		},
	}
	r.register(cmd)
	delivery.register(cmd)
	cmd.Flags().StringVar(&htmlOut, "html-out", "", "Also write the HTML body to this file")
	cmd.Flags().BoolVar(&skipInsights, "no-insights", false, "Skip the five-section AI analysis")
	return cmd
}

/*
newTestEmailCommand sends a prepared HTML/text pair through one provider,
to check credentials before scheduling digests.
*/
func newTestEmailCommand() *cobra.Command {
	var delivery deliveryFlags
	var subject string
	var htmlPath string
	var textPath string

	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send a test email through the selected provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, recipients, err := delivery.resolve()
			if err != nil {
				return err
			}

			htmlBytes, err := os.ReadFile(htmlPath)
			if err != nil {
				return fmt.Errorf("unable to read file '%s': %w", htmlPath, err)
			}
			tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", htmlBytes)
			textBytes, err := os.ReadFile(textPath)
			if err != nil {
				return fmt.Errorf("unable to read file '%s': %w", textPath, err)
			}
			tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", textBytes)

			send := delivery.send
			e := email.SendMessageContext(cmd.Context(), provider, &send, delivery.sender, recipients, subject, string(textBytes), string(htmlBytes), nil)
			if e != nil {
				return fmt.Errorf("%s", e)
			}
			return nil
		},
	}
	delivery.register(cmd)
	cmd.Flags().StringVar(&subject, "subject", "Test subject", "Subject of an email")
	cmd.Flags().StringVar(&htmlPath, "html", "./tmp/email.html", "Html of an email")
	cmd.Flags().StringVar(&textPath, "text", "./tmp/email.txt", "Text of an email")
	return cmd
}
