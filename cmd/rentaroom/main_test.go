package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251219-go-pkg-rentaroom/internal/config"
)

// captureServe 把 serve 的 Action 换成只加载配置
func captureServe(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	app := newApp()
	var got *config.Config
	for _, c := range app.Commands {
		if c.Name == "serve" {
			c.Action = func(_ context.Context, cmd *cli.Command) error {
				var err error
				got, err = loadConfig(cmd)
				return err
			}
		}
	}
	err := app.Run(context.Background(), append([]string{"rentaroom"}, args...))
	return got, err
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rentaroom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("initial_agents: 2\nhttp:\n  addr: \":7000\"\n  burst: 5\n"), 0o600))

	cfg, err := captureServe(t, "--config", path, "--agents", "3", "--ask-timeout", "2s", "serve", "--addr", ":9090")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 3, cfg.InitialAgents)
	assert.Equal(t, 2*time.Second, cfg.AskTimeout)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.HTTP.Burst)
}

func TestInvalidFlags(t *testing.T) {
	_, err := captureServe(t, "--agents", "0", "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_agents must be positive")
}
