package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vito/shape/pkg/config"
	"github.com/vito/shape/pkg/ioctx"
)

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [dir]",
		Short: "Print the configuration that applies to a directory",
		Long: `Print the effective configuration for a directory as TOML. The
configuration file it was read from is noted in a comment; with no file the
defaults are printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path, cfg, err := config.Find(dir)
			if err != nil {
				return err
			}
			stdout := ioctx.StdoutFromContext(cmd.Context())
			if path == "" {
				path = "defaults"
			}
			if _, err := fmt.Fprintf(stdout, "# %s\n", path); err != nil {
				return err
			}
			return cfg.Encode(stdout)
		},
	}
}
