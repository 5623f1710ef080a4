package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
)

func newAttendanceCommand(ctx *commandContext) *cobra.Command {
	attendanceCmd := &cobra.Command{
		Use:   "attendance",
		Short: "Attendance log operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded visits, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AttendanceList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Records) == 0 {
					fmt.Fprintln(stdout, "No visits recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Records))
				for _, record := range resp.Records {
					rows = append(rows, []string{
						record.MemberID,
						record.Name,
						record.Purpose,
						record.Topic,
						record.CheckInTime.Format("2006-01-02 15:04"),
						record.Duration,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Number", "Name", "Purpose", "Topic", "Check-in", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show attendance statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AttendanceStats()
				if err != nil {
					return err
				}
				rows := [][]string{
					{"Total", strconv.Itoa(resp.Stats.Total)},
					{"Today", strconv.Itoa(resp.Stats.Today)},
					{"Active", strconv.Itoa(resp.Stats.Active)},
					{"Average minutes", fmt.Sprintf("%.1f", resp.Stats.AverageMinutes)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Metric", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	var clearConfirm bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded visits",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearConfirm {
				return fmt.Errorf("pass --confirm to delete the attendance log")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AttendanceClear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d recorded visits\n", resp.Cleared)
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVar(&clearConfirm, "confirm", false, "Confirm deletion of the attendance log")

	attendanceCmd.AddCommand(listCmd)
	attendanceCmd.AddCommand(statsCmd)
	attendanceCmd.AddCommand(clearCmd)
	return attendanceCmd
}
