package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/formstate/internal/ir"
	"github.com/roach88/formstate/internal/store"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	Entity  string
	Key     string
	DB      string
	History bool
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print stored snapshots",
		Long: `Print the latest snapshot stored under entity and key, or every
snapshot in sequence order with --history. Without --key, list the keys
stored for the entity.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Entity, "entity", "", "entity name")
	cmd.Flags().StringVar(&opts.Key, "key", "", "snapshot key")
	cmd.Flags().StringVar(&opts.DB, "db", "", "snapshot database (default store.path)")
	cmd.Flags().BoolVar(&opts.History, "history", false, "print every snapshot of the key")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runGet(opts *GetOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	st, err := openStore(formatter, opts.dbPath(opts.DB))
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Key == "" {
		keys, err := st.Keys(ctx, opts.Entity)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		if formatter.Format == "json" {
			return formatter.Success(keys)
		}
		for _, k := range keys {
			fmt.Fprintln(formatter.Writer, k)
		}
		return nil
	}

	var snaps []store.Snapshot
	if opts.History {
		snaps, err = st.History(ctx, opts.Entity, opts.Key)
	} else {
		var snap store.Snapshot
		snap, err = st.Latest(ctx, opts.Entity, opts.Key)
		snaps = []store.Snapshot{snap}
	}
	if errors.Is(err, store.ErrNotFound) || (err == nil && len(snaps) == 0) {
		_ = formatter.Error(ErrCodeNoSnapshot, fmt.Sprintf("no snapshot for %s/%s", opts.Entity, opts.Key), nil)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: no snapshot for %s/%s", ErrCodeNoSnapshot, opts.Entity, opts.Key))
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.Format == "json" {
		if opts.History {
			return formatter.Success(snaps)
		}
		return formatter.Success(snaps[0])
	}
	for _, snap := range snaps {
		data, err := ir.MarshalCanonical(snap.Data)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, err.Error())
		}
		fmt.Fprintf(formatter.Writer, "%d %s %s\n", snap.Seq, snap.Hash, data)
	}
	return nil
}
