package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// wikiFlags override the wiki section of the manifest.
type wikiFlags struct {
	url       string
	userAgent string
	timeout   string
}

// outputFlags override output locations and backend selection.
type outputFlags struct {
	dir       string
	backends  []string
	assetPath string
	sanitize  bool
}

// publishFlags holds all flags for the publish command.
type publishFlags struct {
	common  commonFlags
	wiki    wikiFlags
	output  outputFlags
	exclude []string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "manifest name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug messages")
}

// addWikiFlags adds wiki access flags to a FlagSet.
func addWikiFlags(fs *flag.FlagSet, f *wikiFlags) {
	fs.StringVarP(&f.url, "url", "u", "", "wiki base URL (directory holding index.php)")
	fs.StringVar(&f.userAgent, "user-agent", "", "User-Agent sent to the wiki")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-request timeout (e.g., 30s, 2m)")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "output", "o", "", "output directory")
	fs.StringSliceVarP(&f.backends, "backend", "b", nil, "backend id, repeatable: xhtml, helpblocks, pdf")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.sanitize, "sanitize", false, "filter XHTML page bodies through an HTML policy")
}

// parsePublishFlags parses flags of the publish and config commands and
// returns positional args. usage prints the command help.
func parsePublishFlags(name string, args []string, stderr io.Writer, usage func(io.Writer)) (*publishFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &publishFlags{}

	addCommonFlags(fs, &f.common)
	addWikiFlags(fs, &f.wiki)
	addOutputFlags(fs, &f.output)
	fs.StringSliceVar(&f.exclude, "exclude", nil, "template to expand to nothing, repeatable")

	fs.Usage = func() { usage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
