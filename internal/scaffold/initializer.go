package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/agenda/internal/config"
	"github.com/dyluth/agenda/internal/loader"
)

//go:embed templates/*
var templatesFS embed.FS

// Files created by Initialize, relative to the project directory.
const (
	ConfigFile   = "agenda.yml"
	ScheduleFile = "schedule.yml"
)

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a sample agenda.yml and schedule.yml into dir.
// If force is true, existing files are overwritten.
func Initialize(dir string, force bool) error {
	if !force {
		if err := CheckExisting(dir); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	for _, file := range files {
		path := filepath.Join(dir, file.Path)
		if err := os.WriteFile(path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return validateCreatedFiles(dir)
}

// getTemplateFiles reads all template files
func getTemplateFiles() ([]FileInfo, error) {
	templates := []struct{ name, path string }{
		{"templates/agenda.yml.tmpl", ConfigFile},
		{"templates/schedule.yml.tmpl", ScheduleFile},
	}

	files := make([]FileInfo, 0, len(templates))
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile(tmpl.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.path, err)
		}
		files = append(files, FileInfo{Path: tmpl.path, Content: content, Permissions: 0644})
	}

	return files, nil
}

// validateCreatedFiles loads the written files the same way the CLI does
func validateCreatedFiles(dir string) error {
	if _, err := config.Load(filepath.Join(dir, ConfigFile)); err != nil {
		return fmt.Errorf("created %s is invalid: %w", ConfigFile, err)
	}

	snap, err := loader.LoadFile(filepath.Join(dir, ScheduleFile))
	if err != nil {
		return fmt.Errorf("created %s is invalid: %w", ScheduleFile, err)
	}
	if report := snap.Validate(); !report.Clean() {
		return fmt.Errorf("created %s has %d validation findings", ScheduleFile, report.Findings())
	}

	return nil
}

// NextSteps returns the lines printed after a successful init.
func NextSteps() []string {
	return []string{
		"Edit agenda.yml to name your conference and point it at Redis",
		"Run 'agenda table' to see the sample grid",
		"Run 'agenda import' to save the schedule to Redis",
	}
}
