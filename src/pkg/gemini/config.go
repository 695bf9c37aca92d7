package gemini

import (
	"fmt"
	"os"
	"strings"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
)

const (
	EnvAPIKey = "GEMINI_API_KEY"
	EnvModel  = "GEMINI_MODEL"
)

type Config struct {
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"base_url,omitempty"` // empty means the public Gemini API endpoint
}

func DefaultValueConfig() Config {
	return Config{
		Model: "gemini-2.0-flash",
	}
}

var Cfg Config = DefaultValueConfig()

// InitializeConfig applies defaults; GEMINI_MODEL wins over the file.
func InitializeConfig(localConfig *Config) {
	if localConfig != nil {
		Cfg = *localConfig
		tl.ApplyDefaults(&Cfg, DefaultValueConfig(), func(field string, defVal any) {
			tl.Log(
				tl.Info, palette.Purple,
				"%s field is %s in %s configuration. Using default value: %v",
				field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
			)
		})
	}
	if model := strings.TrimSpace(os.Getenv(EnvModel)); model != "" {
		Cfg.Model = model
	}
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
