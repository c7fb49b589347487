package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

func (a *app) configCmd() *cobra.Command {
	var showSource bool

	show := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the effective configuration after merging defaults, the config file,
environment variables and flags.  The database password is masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if showSource {
				if a.cfgPath != "" {
					fmt.Fprintf(out, "# config file: %s\n", a.cfgPath)
				} else {
					fmt.Fprintln(out, "# config file: (none, using defaults)")
				}
			}
			data, err := yaml.Marshal(a.cfg.Display())
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	show.Flags().BoolVar(&showSource, "source", false, "show the config file in use")

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(show)
	return cmd
}
