package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-wikipub/internal/backend"
	"github.com/alnah/go-wikipub/internal/hints"
)

// backendStatus describes one backend in the backends listing.
type backendStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Ready       bool   `json:"ready"`
	Note        string `json:"note,omitempty"`
}

// browserLookup finds a Chrome binary for the PDF backend. Tests replace it.
var browserLookup = func() (string, bool) {
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		if _, err := os.Stat(bin); err != nil {
			return bin, false
		}
		return bin, true
	}
	return launcher.LookPath()
}

// runBackendsCmd lists the available backends and whether each can run.
// Exit codes: 0 = every backend ready, 1 = at least one is not.
func runBackendsCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printBackendsUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "unknown argument: %s\n", arg)
			printBackendsUsage(env.Stderr)
			return ExitUsage
		}
	}

	statuses := backendStatuses()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(statuses)
	} else {
		printBackendStatuses(env.Stdout, statuses)
	}

	for _, s := range statuses {
		if !s.Ready {
			return ExitGeneral
		}
	}
	return ExitSuccess
}

// backendStatuses checks every backend's external requirements.
func backendStatuses() []backendStatus {
	infos := backend.Available()
	statuses := make([]backendStatus, 0, len(infos))
	for _, info := range infos {
		s := backendStatus{
			ID:          info.ID,
			Name:        info.Name,
			Description: info.Description,
			Ready:       true,
		}
		if info.ID == backend.IDPDF {
			path, found := browserLookup()
			switch {
			case found:
				s.Note = "Chrome: " + path
			case path != "":
				s.Ready = false
				s.Note = "Chrome not found at " + path
			default:
				s.Ready = false
				s.Note = "Chrome/Chromium not found; install Chrome or set ROD_BROWSER_BIN"
			}
		}
		statuses = append(statuses, s)
	}
	return statuses
}

// printBackendStatuses outputs a human-readable backend table.
func printBackendStatuses(w io.Writer, statuses []backendStatus) {
	fmt.Fprintln(w, "Backends:")
	for _, s := range statuses {
		mark := "[OK]"
		if !s.Ready {
			mark = "[ERROR]"
		}
		fmt.Fprintf(w, "  %-7s %-11s %-10s %s\n", mark, s.ID, s.Name, s.Description)
		if s.Note != "" {
			fmt.Fprintf(w, "          %s\n", s.Note)
		}
		if !s.Ready && s.ID == backend.IDPDF {
			if hint := hints.ForBrowserConnect(); hint != "" {
				fmt.Fprintf(w, "         %s\n", hint[1:])
			}
		}
	}
}

// backendIDs lists the selectable backend ids.
func backendIDs() []string {
	infos := backend.Available()
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}
