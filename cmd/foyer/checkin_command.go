package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
)

func newCheckinCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <identifier>",
		Short: "Check a member in by registration number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Checkin(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Identified %s (%s)\n", resp.Member.FullName(), resp.Member.RegistrationNumber)
				if resp.Member.IsTemporary {
					fmt.Fprintln(stdout, "Temporary member (demo mode)")
				}
				fmt.Fprintln(stdout, "Use `foyer session begin` to start the visit")
				return nil
			})
		},
	}
}
