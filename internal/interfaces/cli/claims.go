package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// NewClaimsCmd creates the claims command.
func NewClaimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims [file]",
		Short: "Split claim text into numbered claims",
		Long: "Reads claim text, plain or HTML, from file (or stdin) and prints the\n" +
			"claims with their types, dependencies and the dependency tree.",
		Args: cobra.MaximumNArgs(1),
		RunE: runClaims,
	}
}

func runClaims(cmd *cobra.Command, args []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	svc, err := cliCtx.NewService(nil)
	if err != nil {
		return err
	}

	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	_ = in.Close()
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "failed to read claim text")
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	res, err := svc.ParseClaims(ctx, string(data))
	if err != nil {
		return err
	}

	if cliCtx.OutputFormat != "text" {
		return printJSON(cmd, res)
	}

	rows := make([][]string, 0, len(res.Claims))
	for _, c := range res.Claims {
		dep := "-"
		if c.DependsOn != nil {
			dep = strconv.Itoa(*c.DependsOn)
		}
		rows = append(rows, []string{strconv.Itoa(c.Number), string(c.Type), dep, truncate(c.Text, 60)})
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, FormatTable([]string{"NO", "TYPE", "DEPENDS_ON", "TEXT"}, rows))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(out, "warning: %s\n", d.Error())
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

//Personal.AI order the ending
