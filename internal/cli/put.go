package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/formstate/internal/entity"
	"github.com/roach88/formstate/internal/store"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	Entity string
	Key    string
	Data   string
	DB     string
	Force  bool // store even when fields are invalid
}

// PutResult reports a stored snapshot.
type PutResult struct {
	Snapshot store.Snapshot    `json:"snapshot"`
	Inserted bool              `json:"inserted"`
	Invalid  map[string]string `json:"invalid,omitempty"`
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put [specs-dir]",
		Short: "Store a payload as a flattened snapshot",
		Long: `Merge a JSON payload into a fresh store node and persist its flattened
values under entity and key.

A snapshot identical to the latest one for the key is not stored again.
Payloads with field errors are refused unless --force is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(opts, opts.specsDir(args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity name")
	cmd.Flags().StringVar(&opts.Key, "key", "", "snapshot key")
	cmd.Flags().StringVar(&opts.Data, "data", "", "JSON payload file")
	cmd.Flags().StringVar(&opts.DB, "db", "", "snapshot database (default store.path)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "store payloads with field errors")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runPut(opts *PutOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	node, err := opts.loadEntity(formatter, specsDir, opts.Entity)
	if err != nil {
		return err
	}
	if err := mergePayload(formatter, node, opts.Data); err != nil {
		return err
	}

	invalid := fieldErrors(node)
	if len(invalid) > 0 && !opts.Force {
		_ = formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d field(s) are invalid, use --force to store anyway", len(invalid)), invalid)
		if formatter.Format != "json" {
			formatter.FieldErrors(invalid)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: payload has field errors", ErrCodeInvalid))
	}

	st, err := openStore(formatter, opts.dbPath(opts.DB))
	if err != nil {
		return err
	}
	defer st.Close()

	snap, inserted, err := st.Put(cmd.Context(), opts.Entity, opts.Key, entity.ToFlatValues(node))
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	slog.Debug("snapshot stored", "entity", opts.Entity, "key", opts.Key, "seq", snap.Seq, "inserted", inserted)

	if formatter.Format == "json" {
		return formatter.Success(PutResult{Snapshot: snap, Inserted: inserted, Invalid: invalid})
	}
	if inserted {
		fmt.Fprintf(formatter.Writer, "✓ Stored %s/%s at seq %d (%s)\n", snap.Entity, snap.Key, snap.Seq, snap.Hash)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ %s/%s unchanged at seq %d\n", snap.Entity, snap.Key, snap.Seq)
	}
	return nil
}
