package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Transcript opens path in $EDITOR (or less) positioned at line.
func Transcript(path string, line int) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if line < 1 {
		line = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	cmd := Command(editor, path, line)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Command builds the editor invocation that jumps to line.
func Command(editor, path string, line int) *exec.Cmd {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		fields = []string{"less"}
	}
	name, extra := fields[0], fields[1:]
	base := filepath.Base(name)

	var args []string
	switch {
	case strings.Contains(base, "vim") || strings.Contains(base, "vi") ||
		strings.Contains(base, "nano") || strings.Contains(base, "emacs"):
		args = []string{"+" + strconv.Itoa(line), path}
	case strings.Contains(base, "code"):
		args = []string{"--goto", path + ":" + strconv.Itoa(line)}
	case strings.Contains(base, "less"):
		args = []string{"+" + strconv.Itoa(line), path}
	default:
		args = []string{path}
	}
	return exec.Command(name, append(extra, args...)...)
}
