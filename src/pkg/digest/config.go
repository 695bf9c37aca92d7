package digest

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"erp-dashboard/src/pkg/config"
	"erp-dashboard/src/pkg/util"
)

type Config struct {
	TopRows      int   `json:"top_rows,omitempty"`      // rows per report in the email body
	WithInsights *bool `json:"with_insights,omitempty"` // run the full five-section analysis
	AttachCharts *bool `json:"attach_charts,omitempty"` // one PNG per report next to the CSV
}

func DefaultValueConfig() Config {
	return Config{
		TopRows:      5,
		WithInsights: util.Ptr(true),
		AttachCharts: util.Ptr(true),
	}
}

var Cfg Config = DefaultValueConfig()

func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "digest", "not provided", "default digest config")
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

func enabled(b *bool) bool { return b == nil || *b }
