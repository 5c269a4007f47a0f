package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/agenda/internal/config"
	"github.com/dyluth/agenda/internal/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		force     bool
		setupFunc func(dir string)
		wantErr   string
	}{
		{
			name:      "fresh initialization",
			setupFunc: func(dir string) {},
		},
		{
			name:  "force overwrites existing files",
			force: true,
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, ConfigFile), []byte("old content"), 0644)
				os.WriteFile(filepath.Join(dir, ScheduleFile), []byte("old content"), 0644)
			},
		},
		{
			name: "refuses existing files without force",
			setupFunc: func(dir string) {
				os.WriteFile(filepath.Join(dir, ScheduleFile), []byte("days: []"), 0644)
			},
			wantErr: "project already initialized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setupFunc(dir)

			err := Initialize(dir, tt.force)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			for _, name := range []string{ConfigFile, ScheduleFile} {
				info, err := os.Stat(filepath.Join(dir, name))
				require.NoError(t, err, "%s should exist", name)
				assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
			}
		})
	}
}

func TestInitialize_SampleFiles(t *testing.T) {
	t.Setenv(config.RedisURLEnv, "")
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, false))

	cfg, err := config.Load(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "example-conf", cfg.Conference)
	assert.Equal(t, ScheduleFile, cfg.Snapshot)

	snap, err := loader.LoadFile(filepath.Join(dir, ScheduleFile))
	require.NoError(t, err)
	assert.Len(t, snap.Days(), 2)

	tables, err := snap.BuildSchedule()
	require.NoError(t, err)
	require.Len(t, tables, 2)

	// The garden only opens on day two
	assert.Len(t, tables[0].Venues, 2)
	assert.Len(t, tables[1].Venues, 3)
	assert.True(t, snap.Validate().Clean())
}

func TestCheckExisting(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		wantErr []string
	}{
		{name: "no existing files"},
		{name: "config only", files: []string{ConfigFile}, wantErr: []string{"Found existing: agenda.yml"}},
		{
			name:    "both files",
			files:   []string{ConfigFile, ScheduleFile},
			wantErr: []string{"  - agenda.yml\n", "  - schedule.yml\n", "agenda init --force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644))
			}

			err := CheckExisting(dir)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
