package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bogus/internal/config"
)

func newEnvdocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envdoc",
		Short: "Print the environment variables that override config",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "# Bogus Environment Variables")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Environment variables override values from the configuration file.")
			fmt.Fprintln(out, "Routes can only be set in the file.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Available Environment Variables")
			fmt.Fprintln(out)

			for _, example := range config.EnvExample(&config.Config{}) {
				fmt.Fprintf(out, "- `%s`\n", example)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Examples")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "```bash")
			fmt.Fprintln(out, "# Fixed port, strict matching")
			fmt.Fprintf(out, "export %s_SERVER_PORT=8081\n", config.EnvPrefix)
			fmt.Fprintf(out, "export %s_SERVER_PROMISCUOUS=false\n", config.EnvPrefix)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "# Expose metrics")
			fmt.Fprintf(out, "export %s_ADMIN_ENABLED=true\n", config.EnvPrefix)
			fmt.Fprintf(out, "export %s_ADMIN_PORT=9090\n", config.EnvPrefix)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "bogus serve --config routes.yaml")
			fmt.Fprintln(out, "```")
		},
	}
}
