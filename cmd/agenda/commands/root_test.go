package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/agenda/internal/config"
	"github.com/dyluth/agenda/internal/printer"
	"github.com/dyluth/agenda/internal/scaffold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runAgenda executes the root command with fresh flag values and returns
// what the command wrote to its output.
func runAgenda(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile = "agenda.yml"
	forceInit = false
	importAllowFindings = false
	tableFile, tableSnapshot, tableDay, tableOutputFormat = "", "", "", "default"
	validateFile, validateSnapshot, validateOutputFormat, validateStrict = "", "", "default", false
	exportFile, exportSnapshot, exportOut, exportFormat = "", "", "", "ics"

	var out, messages bytes.Buffer
	oldOut, oldErr := printer.Stdout, printer.Stderr
	printer.Stdout, printer.Stderr = &messages, &messages
	t.Cleanup(func() { printer.Stdout, printer.Stderr = oldOut, oldErr })

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&messages)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

// setupProject writes the sample project into a temp dir pointed at a
// miniredis instance and returns the config path.
func setupProject(t *testing.T) (string, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	t.Setenv(config.RedisURLEnv, "redis://"+mr.Addr())

	dir := t.TempDir()
	require.NoError(t, scaffold.Initialize(dir, false))
	return filepath.Join(dir, scaffold.ConfigFile), mr
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	_, err := runAgenda(t)
	assert.NoError(t, err)
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, err := runAgenda(t, "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestTableCommand_FromFile(t *testing.T) {
	cfg, _ := setupProject(t)
	schedule := filepath.Join(filepath.Dir(cfg), scaffold.ScheduleFile)

	out, err := runAgenda(t, "-c", cfg, "table", "--file", schedule, "--day", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Schedule for conference 'example-conf'")
	assert.Contains(t, out, "Opening Keynote")
	assert.Contains(t, out, "Hands-on Workshop")
	assert.NotContains(t, out, "Garden")
}

func TestTableCommand_InvalidDay(t *testing.T) {
	cfg, _ := setupProject(t)
	schedule := filepath.Join(filepath.Dir(cfg), scaffold.ScheduleFile)

	_, err := runAgenda(t, "-c", cfg, "table", "--file", schedule, "--day", "9")
	require.EqualError(t, err, "invalid --day")
}

func TestTableCommand_InvalidOutput(t *testing.T) {
	_, err := runAgenda(t, "table", "--output", "xml")
	require.EqualError(t, err, "invalid output format")
}

func TestImportThenTableFromRedis(t *testing.T) {
	cfg, mr := setupProject(t)

	_, err := runAgenda(t, "-c", cfg, "import")
	require.NoError(t, err)
	assert.True(t, mr.Exists("agenda:example-conf:current"))

	out, err := runAgenda(t, "-c", cfg, "table", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"conference": "example-conf"`)
	assert.Contains(t, out, `"snapshot_id"`)
}

func TestTableCommand_NothingInRedis(t *testing.T) {
	cfg, _ := setupProject(t)

	_, err := runAgenda(t, "-c", cfg, "table")
	require.EqualError(t, err, "no snapshot saved")
}

func TestValidateCommand(t *testing.T) {
	cfg, _ := setupProject(t)
	dir := filepath.Dir(cfg)

	clean := filepath.Join(dir, scaffold.ScheduleFile)
	out, err := runAgenda(t, "-c", cfg, "validate", "--file", clean, "--strict")
	require.NoError(t, err)
	assert.Equal(t, "No problems found\n", out)

	clashing := filepath.Join(dir, "clash.yml")
	require.NoError(t, os.WriteFile(clashing, []byte(`days: [{id: d1, date: "2013-09-22"}]
venues: [{id: v1, name: Venue 1, order: 1}]
slots: [{id: s1, day: d1, start: "10:00", end: "11:00"}]
items:
  - {id: i1, venue: v1, slots: [s1], details: Registration}
  - {id: i2, venue: v1, slots: [s1], details: Coffee}
`), 0644))

	out, err = runAgenda(t, "-c", cfg, "validate", "--file", clashing)
	require.NoError(t, err)
	assert.Contains(t, out, "Clashes:")

	_, err = runAgenda(t, "-c", cfg, "validate", "--file", clashing, "--strict")
	require.EqualError(t, err, "1 problem found")
}

func TestValidateCommand_SlotCycle(t *testing.T) {
	cfg, _ := setupProject(t)

	cyclic := filepath.Join(filepath.Dir(cfg), "cycle.yml")
	require.NoError(t, os.WriteFile(cyclic, []byte(`days: [{id: d1, date: "2013-09-22"}]
venues: [{id: v1, name: Venue 1, order: 1}]
slots:
  - {id: s1, day: d1, previous: s2, end: "11:00"}
  - {id: s2, day: d1, previous: s1, end: "12:00"}
items: []
`), 0644))

	out, err := runAgenda(t, "-c", cfg, "validate", "--file", cyclic)
	require.NoError(t, err)
	assert.Contains(t, out, "Structural errors:")
}

func TestExportCommand(t *testing.T) {
	cfg, _ := setupProject(t)
	dir := filepath.Dir(cfg)
	schedule := filepath.Join(dir, scaffold.ScheduleFile)

	_, err := runAgenda(t, "-c", cfg, "export", "--file", schedule)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "agenda.ics"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN:VCALENDAR")
	assert.Contains(t, string(data), "SUMMARY:Opening Keynote")

	out, err := runAgenda(t, "-c", cfg, "export", "--file", schedule, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Opening Keynote")
}

func TestMissingConfig(t *testing.T) {
	_, err := runAgenda(t, "-c", filepath.Join(t.TempDir(), "agenda.yml"), "validate")
	require.EqualError(t, err, "agenda.yml not found")
}

func TestHistoryAndSnapshotFlag(t *testing.T) {
	cfg, mr := setupProject(t)

	out, err := runAgenda(t, "-c", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No snapshots saved")

	_, err = runAgenda(t, "-c", cfg, "import")
	require.NoError(t, err)
	first, err := mr.Get("agenda:example-conf:current")
	require.NoError(t, err)

	_, err = runAgenda(t, "-c", cfg, "import")
	require.NoError(t, err)

	out, err = runAgenda(t, "-c", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, first)

	out, err = runAgenda(t, "-c", cfg, "table", "--snapshot", first[:8], "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, first)

	_, err = runAgenda(t, "-c", cfg, "validate", "--snapshot", "ffffffff")
	require.EqualError(t, err, "snapshot not found")
}

func TestInitCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "agenda.yml")

	_, err := runAgenda(t, "-c", cfg, "init")
	require.NoError(t, err)
	assert.FileExists(t, cfg)

	_, err = runAgenda(t, "-c", cfg, "init")
	require.EqualError(t, err, "project already initialized")

	_, err = runAgenda(t, "-c", cfg, "init", "--force")
	require.NoError(t, err)
}
