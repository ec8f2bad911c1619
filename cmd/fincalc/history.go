package main

import (
	"fmt"

	"github.com/iwvelando/fincalc/pkg/output"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or delete recorded calculations",
	}
	cmd.PersistentFlags().StringVarP(&user, "user", "u", "", "user whose history to use (required)")
	_ = cmd.MarkPersistentFlagRequired("user")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent calculations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recorder, closeHistory, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeHistory()

			if limit <= 0 {
				limit = a.conf.History.RecentLimit
			}
			records, err := recorder.Store().Recent(cmd.Context(), user, limit)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			return output.History(cmd.OutOrStdout(), a.format, records)
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 0, "number of records to show (default from configuration)")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one recorded calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recorder, closeHistory, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeHistory()

			if err := recorder.Store().Delete(cmd.Context(), user, args[0]); err != nil {
				return fmt.Errorf("failed to delete %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}
