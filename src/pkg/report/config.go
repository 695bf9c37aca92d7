package report

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
)

type Config struct {
	DefaultCurrency   string   `json:"default_currency,omitempty"`
	StatementRowLimit int      `json:"statement_row_limit,omitempty"` // raw rows looked at before filtering
	AgingRowLimit     int      `json:"aging_row_limit,omitempty"`
	ExcludePatterns   []string `json:"exclude_patterns,omitempty"` // statement rows whose account contains one of these are dropped
}

func DefaultValueConfig() Config {
	return Config{
		DefaultCurrency:   "USD",
		StatementRowLimit: 10,
		AgingRowLimit:     15,
		ExcludePatterns:   []string{"Total", "Profit for the year", "Asset", "Liability", "Funds"},
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "report", "not provided", "default report config")
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
