package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-wikipub"
	"github.com/alnah/go-wikipub/internal/assets"
	"github.com/alnah/go-wikipub/internal/backend"
	"github.com/alnah/go-wikipub/internal/config"
	"github.com/alnah/go-wikipub/internal/hints"
	"github.com/alnah/go-wikipub/internal/mediawiki"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand reports a command name runMain does not know.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	verbose := hasFlag(os.Args, "-v", "--verbose")

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches the command in args[1] and returns the exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "publish":
		flags, positional, err := parsePublishFlags("publish", rest, env.Stderr, printPublishUsage)
		if err != nil {
			return flagErrorCode(env, err)
		}
		return reportError(env, runPublish(ctx, flags, positional, env))
	case "config":
		flags, positional, err := parsePublishFlags("config", rest, env.Stderr, printConfigUsage)
		if err != nil {
			return flagErrorCode(env, err)
		}
		return reportError(env, runConfigCmd(flags, positional, env))
	case "backends":
		return runBackendsCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "wikipub %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return runHelp(rest, env)
	default:
		fmt.Fprintf(env.Stderr, "%v: %s\n", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// flagErrorCode reports a flag parsing error. --help is not an error.
func flagErrorCode(env *Environment, err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v\n", err)
	return ExitUsage
}

// reportError prints err with a hint and returns its exit code.
func reportError(env *Environment, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, ErrNoWikiURL), errors.Is(err, mediawiki.ErrInvalidBaseURL):
		return hints.ForWikiURL()
	case errors.Is(err, wikipub.ErrNoPages):
		return hints.ForNoPages()
	case errors.Is(err, backend.ErrUnknownBackend):
		return hints.ForUnknownBackend(backendIDs())
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{assets.DefaultStyleName, assets.PrintStyleName})
	case errors.Is(err, backend.ErrCreateDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, backend.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, backend.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	}
	return ""
}

// triedPaths extracts the searched locations from a config lookup error.
func triedPaths(err error) []string {
	_, list, found := strings.Cut(err.Error(), "tried ")
	if !found {
		return nil
	}
	return strings.Split(list, ", ")
}

// hasFlag reports whether any of names appears in args.
func hasFlag(args []string, names ...string) bool {
	for _, arg := range args {
		for _, name := range names {
			if arg == name {
				return true
			}
		}
	}
	return false
}
