package dashboard

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
)

type Config struct {
	RefreshMinutes     int `json:"refresh_minutes,omitempty"`      // browser auto refresh
	DefaultRangeMonths int `json:"default_range_months,omitempty"` // start date when none is given
	MaxParallel        int `json:"max_parallel,omitempty"`         // concurrent ERP report requests per load
}

func DefaultValueConfig() Config {
	return Config{
		RefreshMinutes:     5,
		DefaultRangeMonths: 3,
		MaxParallel:        5,
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "dashboard", "not provided", "default dashboard config")
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
