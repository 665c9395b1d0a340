package main

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no args", nil, ExitSuccess, "Commands:", ""},
		{"publish", []string{"publish"}, ExitSuccess, "wikipub publish [flags] [page...]", ""},
		{"backends", []string{"backends"}, ExitSuccess, "wikipub backends [--json]", ""},
		{"config", []string{"config"}, ExitSuccess, "manifest publish would use", ""},
		{"version", []string{"version"}, ExitSuccess, "wikipub version", ""},
		{"help", []string{"help"}, ExitSuccess, "wikipub help [command]", ""},
		{"unknown", []string{"bogus"}, ExitUsage, "", "unknown command: bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			code := runHelp(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runHelp(%v) = %d, want %d", tt.args, code, tt.wantCode)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPrintPublishUsage - Every publish flag is documented
// ---------------------------------------------------------------------------

func TestPrintPublishUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printPublishUsage(&buf)

	for _, flag := range []string{"--config", "--url", "--user-agent", "--timeout", "--exclude",
		"--output", "--backend", "--asset-path", "--sanitize", "--quiet", "--verbose"} {
		if !strings.Contains(buf.String(), flag) {
			t.Errorf("publish usage missing %s", flag)
		}
	}
}
