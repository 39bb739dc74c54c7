package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	d, err := cfg.ReminderInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)
}

func TestReadString_OverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := ReadString(`
[server]
port = 9090

[dashboard]
soon-days = 3

[storage]
driver = sqlite
`)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Dashboard.SoonDays)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "bills.db", cfg.Storage.Path, "unset keys keep defaults")
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestReadString_RejectsUnknownDriver(t *testing.T) {
	_, err := ReadString("[storage]\ndriver = postgres\n")
	assert.Error(t, err)
}

func TestReadString_RejectsBadInterval(t *testing.T) {
	_, err := ReadString("[reminders]\ninterval = soon\n")
	assert.Error(t, err)
}

func TestRead_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bills.ini")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = debug\nformat = json\n"), 0o600))

	cfg, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestRead_EmptyNameUsesDefaults(t *testing.T) {
	cfg, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
