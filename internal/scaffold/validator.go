package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckExisting returns an error naming agenda.yml and schedule.yml if either
// already exists in dir.
func CheckExisting(dir string) error {
	var existingFiles []string

	for _, name := range []string{ConfigFile, ScheduleFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			existingFiles = append(existingFiles, name)
		}
	}

	if len(existingFiles) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("project already initialized\n\nFound existing")
	if len(existingFiles) == 1 {
		fmt.Fprintf(&b, ": %s\n", existingFiles[0])
	} else {
		b.WriteString(" files:\n")
		for _, file := range existingFiles {
			fmt.Fprintf(&b, "  - %s\n", file)
		}
	}
	b.WriteString("\nUse 'agenda init --force' to overwrite them")

	return fmt.Errorf("%s", b.String())
}
