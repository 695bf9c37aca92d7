/*
Package config loads the service configuration file and hands each package
its own section. Packages keep their own Config type, defaults and package
level Cfg; this package only knows how to read the file and how to decode one
named section out of it.
*/
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"gopkg.in/yaml.v3"
)

var (
	sectionsMu sync.RWMutex
	sections   = map[string]json.RawMessage{}
	loadedPath string
)

/*
InitializeConfig reads the configuration file at configPath.

JSON is the default format, .yaml/.yml files are read with yaml.v3 and
converted to the same section map. A missing file is not fatal: every package
falls back to its defaults. A file that exists but cannot be parsed is.
*/
func InitializeConfig(configPath string) {
	e := LoadFile(configPath)
	if e != nil {
		e.QuitIf(xerr.ErrorTypeError)
	}
}

// LoadFile is InitializeConfig without the exit, used by tests and the CLI.
func LoadFile(configPath string) (e *xerr.Error) {
	fileBytes, readErr := os.ReadFile(configPath)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			tl.Log(tl.Warning, palette.Yellow, "Config file '%s' is %s, using %s", configPath, "missing", "defaults")
			setSections(map[string]json.RawMessage{}, configPath)
			return nil
		}
		return xerr.NewError(readErr, "read config file", configPath)
	}

	parsed, e := parseSections(configPath, fileBytes)
	if e != nil {
		return e
	}
	setSections(parsed, configPath)

	tl.Log(tl.Info1, palette.Green, "Loaded config '%s' with %s sections", configPath, len(parsed))
	return nil
}

// LoadBytes replaces the loaded configuration with data (format picked by name's extension).
func LoadBytes(name string, data []byte) (e *xerr.Error) {
	parsed, e := parseSections(name, data)
	if e != nil {
		return e
	}
	setSections(parsed, name)
	return nil
}

func parseSections(name string, data []byte) (parsed map[string]json.RawMessage, e *xerr.Error) {
	parsed = map[string]json.RawMessage{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return parsed, nil
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return parsed, xerr.NewError(err, "parse YAML config", name)
		}
		for key, value := range tree {
			encoded, err := json.Marshal(value)
			if err != nil {
				return parsed, xerr.NewError(err, "convert YAML section to JSON", key)
			}
			parsed[key] = encoded
		}
	default:
		if err := json.Unmarshal(data, &parsed); err != nil {
			return parsed, xerr.NewError(err, "parse JSON config", name)
		}
	}
	return parsed, nil
}

func setSections(parsed map[string]json.RawMessage, path string) {
	sectionsMu.Lock()
	defer sectionsMu.Unlock()
	sections = parsed
	loadedPath = path
}

/*
Section decodes the named top-level section into a new T.
Returns nil when the section is absent so the owning package keeps its
defaults (same contract as echomw.InitializeConfig(nil)).
*/
func Section[T any](name string) *T {
	sectionsMu.RLock()
	raw, ok := sections[name]
	path := loadedPath
	sectionsMu.RUnlock()
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var section T
	if err := json.Unmarshal(raw, &section); err != nil {
		tl.Log(tl.Warning, palette.PurpleBright, "Section '%s' in '%s' is %s: %s, using defaults", name, path, "invalid", err)
		return nil
	}
	return &section
}

/*
CheckIfEnvVarsPresent exits(1) after logging every listed env var that is
empty. Called first thing in each entrypoint.
*/
func CheckIfEnvVarsPresent(names ...string) {
	missing := MissingEnvVars(names...)
	for _, name := range missing {
		tl.Log(tl.Warning, palette.YellowBold, "%s environment variable is %s", name, "not set")
	}
	if len(missing) > 0 {
		os.Exit(1)
	}
}

// MissingEnvVars returns the names from the list that are unset or blank.
func MissingEnvVars(names ...string) (missing []string) {
	for _, name := range names {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// FirstEnv returns the first non-empty value among the given env vars.
func FirstEnv(names ...string) string {
	for _, name := range names {
		if value := strings.TrimSpace(os.Getenv(name)); value != "" {
			return value
		}
	}
	return ""
}

/*
GetPackageName returns the short name of the calling package,
e.g. "echomw" or "erp". Used in config log lines.
*/
func GetPackageName() string {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}
	funcName := runtime.FuncForPC(pc).Name() // erp-dashboard/src/pkg/erp.InitializeConfig
	lastSlash := strings.LastIndex(funcName, "/")
	funcName = funcName[lastSlash+1:]
	if dot := strings.Index(funcName, "."); dot >= 0 {
		funcName = funcName[:dot]
	}
	return funcName
}
