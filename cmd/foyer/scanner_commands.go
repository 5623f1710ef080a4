package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
	"foyer/internal/scanner"
)

func newScannerCommand(ctx *commandContext) *cobra.Command {
	scannerCmd := &cobra.Command{
		Use:   "scanner",
		Short: "Badge scanner operations",
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the badge scanner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScannerStart()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Message != "" {
					fmt.Fprintln(stdout, resp.Message)
				}
				printScannerSnapshot(stdout, resp.Snapshot)
				return nil
			})
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the badge scanner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ScannerStop()
				if err != nil {
					return err
				}
				printScannerSnapshot(cmd.OutOrStdout(), resp.Snapshot)
				return nil
			})
		},
	}

	scannerCmd.AddCommand(startCmd)
	scannerCmd.AddCommand(stopCmd)
	return scannerCmd
}

func printScannerSnapshot(stdout io.Writer, snap scanner.Snapshot) {
	fmt.Fprintf(stdout, "Scanner: %s\n", snap.State)
	if snap.Device != "" {
		fmt.Fprintf(stdout, "Device: %s\n", snap.Device)
	}
	if snap.LastError != "" {
		fmt.Fprintf(stdout, "Last error: %s\n", snap.LastError)
	}
}
