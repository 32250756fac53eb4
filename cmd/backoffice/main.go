// cmd/backoffice/main.go
//
// Entry point for the catalog back office. It prepares the state directory
// in the project directory (defaults to cwd) and runs the TUI in the
// alternate screen until the user quits.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/backoffice/internal/config"
	"github.com/kingrea/backoffice/internal/tui"
)

func main() {
	projectDir := flag.String("project", "", "directory holding backoffice.yaml (defaults to cwd)")
	flag.Parse()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	project, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitStateDir(project); err != nil {
		die("init state dir: %v", err)
	}

	app, err := tui.NewApp(project)
	if err != nil {
		die("start: %v", err)
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		app.Close()
		die("run TUI: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "backoffice: "+format+"\n", args...)
	os.Exit(1)
}
