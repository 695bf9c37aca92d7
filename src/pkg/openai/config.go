package openai

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
)

const EnvAPIKey = "OPENAI_API_KEY"

type Config struct {
	BaseURL             string `json:"base_url,omitempty"`
	Model               string `json:"model,omitempty"`
	ReasoningEffort     Effort `json:"reasoning_effort,omitempty"` // only sent for reasoning models
	Background          bool   `json:"background,omitempty"`       // create in background and poll
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty"`
	PollTimeoutSeconds  int    `json:"poll_timeout_seconds,omitempty"`
	RequestTimeout      int    `json:"request_timeout_seconds,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		BaseURL:             "https://api.openai.com/v1",
		Model:               "gpt-4o-mini",
		PollIntervalSeconds: 2,
		PollTimeoutSeconds:  300,
		RequestTimeout:      300, // model may take a while
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "openai", "not provided", "default openai config")
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

func (c Config) pollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c Config) pollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}
