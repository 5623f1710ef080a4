package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Check-in workflow operations",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current check-in state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionStatus()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "State: %s\n", resp.Snapshot.State)
				if resp.Snapshot.Session != nil {
					fmt.Fprintf(stdout, "Member: %s (%s)\n", resp.Snapshot.Session.Name, resp.Snapshot.Session.MemberID)
					if resp.Snapshot.Session.Purpose != "" {
						fmt.Fprintf(stdout, "Purpose: %s\n", resp.Snapshot.Session.Purpose)
					}
					if resp.Snapshot.Session.Topic != "" {
						fmt.Fprintf(stdout, "Topic: %s\n", resp.Snapshot.Session.Topic)
					}
					if resp.Snapshot.Elapsed != "" {
						fmt.Fprintf(stdout, "Elapsed: %s\n", resp.Snapshot.Elapsed)
					}
				}
				return nil
			})
		},
	}

	var detailsCancel bool
	detailsCmd := &cobra.Command{
		Use:   "details",
		Short: "Open or withdraw the visit detail form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionDetails(detailsCancel)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", resp.State)
				return nil
			})
		},
	}
	detailsCmd.Flags().BoolVar(&detailsCancel, "cancel", false, "Withdraw the detail form and return to the identified state")

	var beginTopic string
	beginCmd := &cobra.Command{
		Use:   "begin <purpose>",
		Short: "Start the timed visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SessionBegin(args[0], beginTopic)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Snapshot.Session != nil {
					fmt.Fprintf(stdout, "Visit started for %s\n", resp.Snapshot.Session.Name)
					fmt.Fprintf(stdout, "Purpose: %s, topic: %s\n", resp.Snapshot.Session.Purpose, resp.Snapshot.Session.Topic)
					return nil
				}
				fmt.Fprintln(stdout, "Visit started")
				return nil
			})
		},
	}
	beginCmd.Flags().StringVar(&beginTopic, "topic", "", "Visit topic (defaults to 'Non spécifié')")

	cancelCmd := &cobra.Command{
		Use:   "cancel",
		Short: "Discard the identified session without recording a visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.SessionCancel(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session cancelled")
				return nil
			})
		},
	}

	var endConfirm bool
	endCmd := &cobra.Command{
		Use:   "end",
		Short: "Close the active visit and record attendance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if !endConfirm {
					fmt.Fprintln(cmd.OutOrStdout(), "Pass --confirm to close the visit")
					return nil
				}
				resp, err := client.SessionEnd(true)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Visit closed for %s\n", resp.Record.Name)
				fmt.Fprintf(stdout, "Duration: %s\n", resp.Record.Duration)
				return nil
			})
		},
	}
	endCmd.Flags().BoolVar(&endConfirm, "confirm", false, "Confirm closing the active visit")

	sessionCmd.AddCommand(statusCmd)
	sessionCmd.AddCommand(detailsCmd)
	sessionCmd.AddCommand(beginCmd)
	sessionCmd.AddCommand(cancelCmd)
	sessionCmd.AddCommand(endCmd)
	return sessionCmd
}
