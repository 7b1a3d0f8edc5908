package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSchemasCmd creates the schemas command.
func NewSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the registered schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cliCtx.NewService(nil)
			if err != nil {
				return err
			}

			infos := svc.Schemas()
			if cliCtx.OutputFormat != "text" {
				return printJSON(cmd, infos)
			}

			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				def := ""
				if info.Default {
					def = "*"
				}
				rows = append(rows, []string{info.Name, info.Kind, def, strings.Join(info.Fields, ",")})
			}
			fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"NAME", "KIND", "DEFAULT", "FIELDS"}, rows))
			return nil
		},
	}
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "patentnorm %s (commit: %s, built: %s)\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}

//Personal.AI order the ending
