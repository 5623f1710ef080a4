package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <identifier>",
		Short: "Look up a member without opening a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Resolve(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "%s (%s)\n", resp.Member.FullName(), resp.Member.RegistrationNumber)
				fmt.Fprintf(stdout, "Occupation: %s\n", resp.Member.Occupation)
				if resp.Member.IsTemporary {
					fmt.Fprintln(stdout, "Temporary member (demo mode)")
				}
				return nil
			})
		},
	}
}
