package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleSection struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
}

func TestLoadBytesJSON(t *testing.T) {
	e := LoadBytes("config.json", []byte(`{"server":{"address":"0.0.0.0","port":9000}}`))
	require.Nil(t, e)

	section := Section[sampleSection]("server")
	require.NotNil(t, section)
	assert.Equal(t, "0.0.0.0", section.Address)
	assert.Equal(t, 9000, section.Port)

	assert.Nil(t, Section[sampleSection]("absent"))
}

func TestLoadBytesYAML(t *testing.T) {
	e := LoadBytes("config.yaml", []byte("server:\n  address: 127.0.0.1\n  port: 8401\n"))
	require.Nil(t, e)

	section := Section[sampleSection]("server")
	require.NotNil(t, section)
	assert.Equal(t, "127.0.0.1", section.Address)
	assert.Equal(t, 8401, section.Port)
}

func TestLoadBytesRejectsBrokenJSON(t *testing.T) {
	e := LoadBytes("config.json", []byte(`{"server":`))
	assert.NotNil(t, e)
}

func TestSectionWithWrongShapeFallsBack(t *testing.T) {
	require.Nil(t, LoadBytes("config.json", []byte(`{"server":"not an object"}`)))
	assert.Nil(t, Section[sampleSection]("server"))
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	e := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Nil(t, e)
	assert.Nil(t, Section[sampleSection]("server"))
}

func TestLoadFileFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":1}}`), 0o600))
	require.Nil(t, LoadFile(path))
	section := Section[sampleSection]("server")
	require.NotNil(t, section)
	assert.Equal(t, 1, section.Port)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("DASH_TEST_A", "")
	t.Setenv("DASH_TEST_B", " value ")

	assert.Equal(t, []string{"DASH_TEST_A"}, MissingEnvVars("DASH_TEST_A", "DASH_TEST_B"))
	assert.Equal(t, "value", FirstEnv("DASH_TEST_A", "DASH_TEST_B"))
	assert.Equal(t, "", FirstEnv("DASH_TEST_A"))
}

func TestGetPackageName(t *testing.T) {
	assert.Equal(t, "config", GetPackageName())
}
