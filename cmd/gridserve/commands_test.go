package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jgoulah/gridserve/internal/config"
	"github.com/jgoulah/gridserve/internal/database"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	cfgFile = path
	t.Cleanup(func() {
		cfgFile = ""
		initConfigForce = false
	})

	require.NoError(t, runInitConfig(initConfigCmd, nil))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	require.ErrorContains(t, runInitConfig(initConfigCmd, nil), "already exists")

	initConfigForce = true
	require.NoError(t, runInitConfig(initConfigCmd, nil))
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "meterusage.csv")
	out := filepath.Join(dir, "meterusage.db")
	require.NoError(t, os.WriteFile(in, []byte(`DateTime,EnergyUsage
2024-01-01T01:00:00,11.2
2024-01-01T00:00:00,12.5
2024-01-01T02:00:00,10.8
`), 0644))

	convertCmd.SetContext(context.Background())
	require.NoError(t, runConvert(convertCmd, []string{in, out}))

	db, err := database.OpenReadOnly(out)
	require.NoError(t, err)
	defer db.Close()

	n, err := db.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	readings, err := db.ListReadings(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12.5, readings[0].EnergyUsage)

	require.ErrorContains(t, runConvert(convertCmd, []string{in, out}), "already exists")
}
