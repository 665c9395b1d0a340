package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wikipub <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  publish    Publish wiki pages with one or more backends")
	fmt.Fprintln(w, "  backends   List available backends")
	fmt.Fprintln(w, "  config     Print the effective manifest")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'wikipub help <command>' for details on a specific command.")
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wikipub publish [flags] [page...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fetch pages from a MediaWiki installation and write them with the")
	fmt.Fprintln(w, "selected backends.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  page    Page reference \"[lang:][Namespace:]Title[#Section]\"")
	fmt.Fprintln(w, "          (replaces the manifest page list)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Manifest:")
	fmt.Fprintln(w, "  -c, --config <name>       Manifest name or path (env: WIKIPUB_CONFIG)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Wiki:")
	fmt.Fprintln(w, "  -u, --url <url>           Wiki base URL (env: WIKIPUB_URL)")
	fmt.Fprintln(w, "      --user-agent <s>      User-Agent header")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-request timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --exclude <template>  Template expanding to nothing (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (env: WIKIPUB_OUTPUT)")
	fmt.Fprintln(w, "  -b, --backend <id>        Backend: xhtml, helpblocks, pdf (repeatable)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and templates/ directory")
	fmt.Fprintln(w, "      --sanitize            Filter XHTML page bodies")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug messages")
}

// printBackendsUsage prints usage for the backends command.
func printBackendsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wikipub backends [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List available backends and check their requirements.")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wikipub config [flags] [page...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the manifest publish would use, as YAML. Accepts the")
	fmt.Fprintln(w, "publish flags.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "publish":
		printPublishUsage(env.Stdout)
	case "backends":
		printBackendsUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: wikipub version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: wikipub help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
