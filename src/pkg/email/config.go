package email

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
)

const (
	EnvMailgunDomain = "MAILGUN_DOMAIN"
	EnvMailgunAPIKey = "MAILGUN_API_KEY"
	EnvSendgridKey   = "SENDGRID_API_KEY"
)

type Config struct {
	Provider       string   `json:"provider,omitempty"`        // mailgun | sendgrid | ses
	Sender         string   `json:"sender,omitempty"`          // From address for digests
	Recipients     []string `json:"recipients,omitempty"`      // default digest recipients
	SubjectPrefix  string   `json:"subject_prefix,omitempty"`  // prepended to every digest subject
	MailgunAPIBase string   `json:"mailgun_api_base,omitempty"` // EU accounts use https://api.eu.mailgun.net
	Send           *bool    `json:"send,omitempty"`            // false logs messages instead of sending them
}

func DefaultValueConfig() Config {
	return Config{
		Provider:       string(ProviderMailgun),
		SubjectPrefix:  "[ERP Dashboard]",
		MailgunAPIBase: "https://api.mailgun.net",
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "email", "not provided", "default email config")
		return
	}

	Cfg = *localConfig
	tl.ApplyDefaults(&Cfg, DefaultValueConfig(), func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

// ShouldSend reports whether Cfg allows real delivery. Unset means yes.
func (c Config) ShouldSend() bool {
	return c.Send == nil || *c.Send
}

// RequiredEnv lists the env vars a provider needs.
func RequiredEnv(provider Provider) []string {
	switch provider {
	case ProviderMailgun:
		return []string{EnvMailgunDomain, EnvMailgunAPIKey}
	case ProviderSendgrid:
		return []string{EnvSendgridKey}
	case ProviderSES:
		return []string{"AWS_REGION"}
	}
	return nil
}
