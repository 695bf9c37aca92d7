package erp

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
)

const (
	EnvURL          = "ERP_URL"
	EnvURLLegacy    = "NEXT_PUBLIC_ERP_URL"
	EnvAPIKey       = "ERP_API_KEY"
	EnvAPISecret    = "ERP_API_SECRET"
	EnvAPISecretOld = "ERP_API_SECRIT" // misspelled name still found in old deployments
)

type Config struct {
	URL            string `json:"url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Periodicity    string `json:"periodicity,omitempty"`     // Monthly, Quarterly, Half-Yearly, Yearly
	AgeingBasedOn  string `json:"ageing_based_on,omitempty"` // Due Date or Posting Date
	AgingRanges    []int  `json:"aging_ranges,omitempty"`    // range1..range4 upper bounds in days
	FallbackLimit  int    `json:"fallback_limit,omitempty"`  // limit_page_length for fallback list queries
}

func DefaultValueConfig() Config {
	return Config{
		URL:            "https://demo.erpnext.com",
		TimeoutSeconds: 15,
		Periodicity:    "Yearly",
		AgeingBasedOn:  "Due Date",
		AgingRanges:    []int{30, 60, 90, 120},
		FallbackLimit:  500,
	}
}

var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
ERP_URL (or NEXT_PUBLIC_ERP_URL) overrides the url from the file.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "erp", "not provided", "default erp config")
	} else {
		defaultConfig := DefaultValueConfig()
		Cfg = *localConfig
		tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
			tl.Log(
				tl.Info, palette.Purple,
				"%s field is %s in %s configuration. Using default value: %v",
				field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
			)
		})
		tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "erp", "provided", "local erp config")
	}

	if envURL := config.FirstEnv(EnvURL, EnvURLLegacy); envURL != "" {
		Cfg.URL = envURL
	}
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Credentials is the API key pair, read from the environment only.
type Credentials struct {
	APIKey    string
	APISecret string
}

func CredentialsFromEnv() Credentials {
	return Credentials{
		APIKey:    config.FirstEnv(EnvAPIKey),
		APISecret: config.FirstEnv(EnvAPISecret, EnvAPISecretOld),
	}
}

// Problems lists what is missing, for startup validation.
func (c Credentials) Problems() (problems []string) {
	if c.APIKey == "" {
		problems = append(problems, EnvAPIKey+" environment variable is not set")
	}
	if c.APISecret == "" {
		problems = append(problems, EnvAPISecret+" environment variable is not set")
	}
	return problems
}
