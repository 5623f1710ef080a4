package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"foyer/internal/ipc"
	"foyer/internal/kioskctl"
	"foyer/internal/session"
)

func newControlCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the foyer kiosk",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := kioskExecutable()
			if err != nil {
				return err
			}

			result, err := kioskctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				launchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Kiosk not running, launching...")
			}

			switch result.State {
			case kioskctl.StartStateStarted:
				fmt.Fprintln(stdout, "Kiosk started")
			case kioskctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Kiosk already running")
			case kioskctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the foyer kiosk (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := kioskctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, kioskctl.ErrNotRunning) {
				fmt.Fprintln(stdout, "Kiosk is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping kiosk process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Kiosk stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the foyer kiosk",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := kioskExecutable()
			if err != nil {
				return err
			}

			result, err := kioskctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				launchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping kiosk process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Kiosk stopped")
			}

			switch result.Start.State {
			case kioskctl.StartStateStarted, kioskctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Kiosk restarted")
			case kioskctl.StartStateRequested:
				if strings.TrimSpace(result.Start.Message) != "" {
					fmt.Fprintln(stdout, result.Start.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show kiosk and attendance status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := kioskctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("Kiosk Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range kioskStatusLines(statusResp, cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != "") {
				fmt.Fprintln(stdout, renderStatusLine(line.label, line.kind, line.detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Attendance", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := [][]string{
				{"Total", strconv.Itoa(statusResp.AttendanceStats.Total)},
				{"Today", strconv.Itoa(statusResp.AttendanceStats.Today)},
				{"Active", strconv.Itoa(statusResp.AttendanceStats.Active)},
				{"Average minutes", fmt.Sprintf("%.1f", statusResp.AttendanceStats.AverageMinutes)},
			}
			fmt.Fprint(stdout, renderTable([]string{"Metric", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintln(stdout)
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

type statusLine struct {
	label  string
	kind   statusKind
	detail string
}

func kioskStatusLines(resp *ipc.StatusResponse, ntfyConfigured bool) []statusLine {
	lines := make([]statusLine, 0, 5)
	if resp.Running {
		lines = append(lines, statusLine{"Foyer", statusOK, "Running"})
	} else {
		lines = append(lines, statusLine{"Foyer", statusWarn, "Not running (run `foyer start`)"})
	}

	if resp.DemoMode {
		lines = append(lines, statusLine{"Members", statusWarn, fmt.Sprintf("%d loaded (demo dataset)", resp.MemberStats.Total)})
	} else if resp.MemberStats.Total > 0 {
		lines = append(lines, statusLine{"Members", statusOK, fmt.Sprintf("%d loaded", resp.MemberStats.Total)})
	} else {
		lines = append(lines, statusLine{"Members", statusInfo, "Directory not loaded"})
	}

	switch resp.Scanner.State {
	case "active":
		lines = append(lines, statusLine{"Scanner", statusOK, fmt.Sprintf("Scanning on %s", resp.Scanner.Device)})
	case "starting":
		lines = append(lines, statusLine{"Scanner", statusInfo, "Starting"})
	default:
		if resp.Scanner.LastError != "" {
			lines = append(lines, statusLine{"Scanner", statusWarn, resp.Scanner.LastError})
		} else {
			lines = append(lines, statusLine{"Scanner", statusInfo, "Stopped"})
		}
	}

	lines = append(lines, statusLine{"Session", sessionStatusKind(resp.Session), sessionStatusDetail(resp.Session)})

	if ntfyConfigured {
		lines = append(lines, statusLine{"Notifications", statusOK, "Configured"})
	} else {
		lines = append(lines, statusLine{"Notifications", statusWarn, "Not configured"})
	}
	return lines
}

func sessionStatusKind(snap session.Snapshot) statusKind {
	if snap.State == session.StateActive {
		return statusOK
	}
	return statusInfo
}

func sessionStatusDetail(snap session.Snapshot) string {
	if snap.Session == nil {
		return "Idle"
	}
	switch snap.State {
	case session.StateActive:
		return fmt.Sprintf("%s checked in (%s)", snap.Session.Name, snap.Elapsed)
	case session.StateIdentified:
		return fmt.Sprintf("%s identified", snap.Session.Name)
	case session.StateDetailed:
		return fmt.Sprintf("Capturing visit details for %s", snap.Session.Name)
	default:
		return "Idle"
	}
}

func kioskExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func launchOptions(ctx *commandContext) kioskctl.LaunchOptions {
	opts := kioskctl.LaunchOptions{}
	if ctx.socketFlag != nil {
		if socket := strings.TrimSpace(*ctx.socketFlag); socket != "" {
			opts.SocketPath = socket
		}
	}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
