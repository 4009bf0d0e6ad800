package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bogus/internal/config"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>...",
		Short: "Check config files without serving",
		Long: `Load each config file the way serve does, environment overrides included,
and report whether it is valid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	invalid := 0

	for _, path := range args {
		cfg, err := config.Load(path)
		if err != nil {
			invalid++
			fmt.Fprintf(out, "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "%s: ok (%d routes)\n", path, len(cfg.Routes))
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d config files invalid", invalid, len(args))
	}
	return nil
}
