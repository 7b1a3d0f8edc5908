package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

type normalizeOptions struct {
	schema   string
	workers  int
	issues   bool
	failFast bool
}

// NewNormalizeCmd creates the normalize command.
func NewNormalizeCmd() *cobra.Command {
	opts := &normalizeOptions{}

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize JSON or NDJSON records",
		Long: "Reads a JSON object, a JSON array of objects or newline-delimited JSON\n" +
			"from file (or stdin when omitted or \"-\") and writes one normalized\n" +
			"record per line.  Records that cannot be normalized are reported on\n" +
			"stderr and make the command fail after the rest are written.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.schema, "schema", "s", "", "composite schema name (default: normalize.default_schema)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "records normalized concurrently (default: normalize.workers)")
	f.BoolVar(&opts.issues, "issues", true, "include field-level issues in the output")
	f.BoolVar(&opts.failFast, "fail-fast", false, "stop at the first record that cannot be normalized")
	return cmd
}

// normalizedLine is one output line; Issues is dropped with --issues=false.
type normalizedLine struct {
	Schema string         `json:"schema"`
	Record schema.Record  `json:"record"`
	Issues []schema.Issue `json:"issues,omitempty"`
}

func runNormalize(cmd *cobra.Command, args []string, opts *normalizeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if opts.workers < 0 {
		return errors.InvalidParam("--workers must not be negative")
	}

	svc, err := cliCtx.NewService(func(c *normalization.Config) {
		if opts.workers > 0 {
			c.Workers = opts.workers
		}
		if opts.failFast {
			c.FailFast = true
		}
	})
	if err != nil {
		return err
	}

	in, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	records, err := normalization.DecodeRecords(in)
	_ = in.Close()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.InvalidParam("no records in input")
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	batch, err := svc.NormalizeBatch(ctx, opts.schema, records)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, res := range batch.Results {
		if res == nil {
			continue
		}
		line := normalizedLine{Schema: res.Schema, Record: res.Record}
		if opts.issues {
			line.Issues = res.Issues
		}
		if err := enc.Encode(line); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write record")
		}
	}

	for _, e := range batch.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "record %d: %v\n", e.Index, e.Err)
	}
	cliCtx.Logger.Info("normalize finished",
		logging.String("batch_id", batch.BatchID),
		logging.Int("records", len(records)),
		logging.Int("failed", len(batch.Errors)))

	if len(batch.Errors) > 0 {
		return errors.New(errors.CodeBatchFailed, "batch normalization failed").
			WithDetail(fmt.Sprintf("%d of %d records failed", len(batch.Errors), len(records)))
	}
	return nil
}

//Personal.AI order the ending
