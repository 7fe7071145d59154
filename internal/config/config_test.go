package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "cardfold.db", "")
	flags.String("listen", "127.0.0.1:8484", "")
	flags.String("repos", "repos", "")
	flags.String("level", "info", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "cardfold.db", cfg.DB)
	require.Equal(t, "127.0.0.1:8484", cfg.Listen)
	require.Equal(t, "info", cfg.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: /tmp/cards.db\nlevel: debug\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "/tmp/cards.db", cfg.DB)
	require.Equal(t, "debug", cfg.Level)
	// Untouched keys keep their defaults.
	require.Equal(t, "127.0.0.1:8484", cfg.Listen)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardfold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: from-file.db\n"), 0o644))
	t.Setenv("CARDFOLD_DB", "from-env.db")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, "from-env.db", cfg.DB)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CARDFOLD_DB", "from-env.db")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--db", "from-flag.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	require.Equal(t, "from-flag.db", cfg.DB)
}

func TestInvalidLevelRejected(t *testing.T) {
	t.Setenv("CARDFOLD_LEVEL", "loud")

	_, err := Load("", nil)
	require.Error(t, err)
}

func TestMissingFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	require.Equal(t, "cardfold.db", cfg.DB)
}
