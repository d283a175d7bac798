package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/cmrp/pkg/config"
)

// writeConfig stores a config that keeps every file inside a temp dir
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "projects.db")
	cfg.Sessions.Path = filepath.Join(dir, "sessions.db")
	cfg.Logging.Level = "error"
	path := filepath.Join(dir, "cmrp.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBootstrapEphemeral(t *testing.T) {
	ctx := context.Background()
	rt, err := Bootstrap(ctx, config.DefaultConfig(), zaptest.NewLogger(t), true)
	require.NoError(t, err)
	defer rt.Close()

	result, err := NewSeedCommand(SeedConfig{Projects: 5, Updates: 1, Forecasts: true}, rt.Services).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, result.InsertedCount)
	assert.Empty(t, result.Errors)

	projects, err := rt.Services.Projects.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 5)
	for _, p := range projects {
		assert.True(t, strings.HasPrefix(p.ProjectNo, "DEMO-"), p.ProjectNo)
		assert.NotEmpty(t, p.LatestUpdate)
	}

	log, err := rt.Services.Updates.Log(ctx)
	require.NoError(t, err)
	assert.Len(t, log, 5)
}

func TestSeedRejectsNonPositiveCount(t *testing.T) {
	rt, err := Bootstrap(context.Background(), config.DefaultConfig(), zaptest.NewLogger(t), true)
	require.NoError(t, err)
	defer rt.Close()

	_, err = NewSeedCommand(SeedConfig{}, rt.Services).Execute(context.Background())
	assert.Error(t, err)
}

func TestImportExportRoundTrip(t *testing.T) {
	cfgPath := writeConfig(t)
	csvPath := filepath.Join(t.TempDir(), "projects.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Project #,Project Name,Client,Amount,Status (%)\n"+
			"P-1,Substation,Acme,\"1,000\",40\n"+
			"P-2,,Acme,500,0\n"+
			"P-3,Feeder,Volt,2000,100\n"), 0644))

	out, err := run(t, "--config", cfgPath, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted: 2")
	assert.Contains(t, out, "Row 3: Missing or empty 'Project Name'.")

	out, err = run(t, "--config", cfgPath, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Substation")
	assert.NotContains(t, out, "Feeder")

	out, err = run(t, "--config", cfgPath, "export", "--completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Feeder")

	out, err = run(t, "--config", cfgPath, "report", "dashboard", "--format", "json")
	require.NoError(t, err)
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view), out)
}

func TestUserCreate(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "user", "create", "-u", "root")
	require.NoError(t, err)
	assert.Contains(t, out, "Created root (Administrator)")
	assert.Contains(t, out, "Generated password: ")

	_, err = run(t, "--config", cfgPath, "user", "create", "-u", "root", "-p", "long-enough")
	assert.Error(t, err)

	_, err = run(t, "--config", cfgPath, "user", "create", "-u", "ana", "-p", "short")
	assert.Error(t, err)

	_, err = run(t, "--config", cfgPath, "user", "create", "-u", "ana", "-r", "Janitor")
	assert.Error(t, err)
}

func TestMigrateAndGantt(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, "--config", cfgPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date")

	_, err = run(t, "--config", cfgPath, "gantt", "abc")
	assert.Error(t, err)

	_, err = run(t, "--config", cfgPath, "gantt", "42")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cmrp.yaml")
	_, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Addr, cfg.Server.Addr)
}

func TestEphemeralSeed(t *testing.T) {
	out, err := run(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--ephemeral", "seed", "-n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted: 3")
}
