package main

import (
	"fmt"

	"github.com/alnah/go-wikipub/internal/yamlutil"
)

// runConfigCmd prints the effective manifest: file, environment and flag
// overrides merged and defaults filled in.
func runConfigCmd(flags *publishFlags, args []string, env *Environment) error {
	cfg, err := loadManifest(flags, args, env)
	if err != nil {
		return err
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(env.Stdout, string(data))
	return err
}
