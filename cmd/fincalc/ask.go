package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask which calculator fits a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := a.assistantClient().Recommend(cmd.Context(), nil, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if reply.Fallback {
				a.logger.Info("answered from built-in suggestions",
					zap.String("op", "main.ask"),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}
}
