package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
	"foyer/internal/member"
)

func newMembersCommand(ctx *commandContext) *cobra.Command {
	membersCmd := &cobra.Command{
		Use:   "members",
		Short: "Member directory operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MembersList()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.DemoMode {
					fmt.Fprintln(stdout, "Directory unreachable; showing demo dataset")
				}
				if len(resp.Members) == 0 {
					fmt.Fprintln(stdout, "No members loaded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Members))
				for _, m := range resp.Members {
					rows = append(rows, []string{
						m.RegistrationNumber,
						m.FullName(),
						string(m.Occupation),
						yesNo(m.IsTemporary),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Number", "Name", "Occupation", "Temporary"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Refresh the member directory from the remote registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MembersReload()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.DemoMode {
					fmt.Fprintf(stdout, "Directory unreachable; loaded %d demo members\n", resp.Count)
					return nil
				}
				fmt.Fprintf(stdout, "Loaded %d members\n", resp.Count)
				return nil
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show member directory statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.MembersStats()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Stats.DemoMode {
					fmt.Fprintln(stdout, "Directory unreachable; statistics reflect the demo dataset")
				}
				rows := memberStatsRows(resp.Stats)
				fmt.Fprintln(stdout, renderTable(
					[]string{"Metric", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	membersCmd.AddCommand(listCmd)
	membersCmd.AddCommand(reloadCmd)
	membersCmd.AddCommand(statsCmd)
	return membersCmd
}

func memberStatsRows(stats member.Stats) [][]string {
	rows := [][]string{
		{"Total", strconv.Itoa(stats.Total)},
		{"With profile image", strconv.Itoa(stats.WithProfileImage)},
		{"Joined last 30 days", strconv.Itoa(stats.JoinedLast30Days)},
	}
	for _, occupation := range []member.Occupation{
		member.OccupationStudent,
		member.OccupationEmployee,
		member.OccupationEntrepreneur,
		member.OccupationUnemployed,
		member.OccupationOther,
	} {
		count := stats.ByOccupation[string(occupation)]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{"Occupation: " + string(occupation), strconv.Itoa(count)})
	}
	return rows
}
