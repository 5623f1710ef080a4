package main

import (
	"testing"
)

func TestMembersReloadFallsBackToDemoData(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"members", "reload"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("members reload: %v", err)
	}
	requireContains(t, out, "demo members")

	out, _, err = runCLI(t, []string{"members", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("members list: %v", err)
	}
	requireContains(t, out, "ACM01")
	requireContains(t, out, "demo dataset")
}

func TestCheckinAndSessionFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"members", "reload"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("members reload: %v", err)
	}

	out, _, err := runCLI(t, []string{"checkin", "acm-01"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("checkin: %v", err)
	}
	requireContains(t, out, "Identified")
	requireContains(t, out, "ACM01")

	out, _, err = runCLI(t, []string{"session", "begin", "study"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session begin: %v", err)
	}
	requireContains(t, out, "Visit started")

	out, _, err = runCLI(t, []string{"session", "end"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session end without confirm: %v", err)
	}
	requireContains(t, out, "--confirm")

	out, _, err = runCLI(t, []string{"session", "end", "--confirm"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session end: %v", err)
	}
	requireContains(t, out, "Visit closed")

	out, _, err = runCLI(t, []string{"attendance", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("attendance list: %v", err)
	}
	requireContains(t, out, "ACM01")

	if _, _, err = runCLI(t, []string{"attendance", "clear"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected attendance clear to require --confirm")
	}

	out, _, err = runCLI(t, []string{"attendance", "clear", "--confirm"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("attendance clear: %v", err)
	}
	requireContains(t, out, "Cleared 1")

	out, _, err = runCLI(t, []string{"attendance", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("attendance list after clear: %v", err)
	}
	requireContains(t, out, "No visits recorded")
}

func TestResolveDoesNotOpenSession(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"members", "reload"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("members reload: %v", err)
	}

	out, _, err := runCLI(t, []string{"resolve", "acm-03"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "ACM03")
	requireContains(t, out, "Occupation:")

	out, _, err = runCLI(t, []string{"session", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session status: %v", err)
	}
	requireContains(t, out, "idle")
}

func TestSessionCancelDiscardsIdentification(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"members", "reload"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("members reload: %v", err)
	}
	if _, _, err := runCLI(t, []string{"checkin", "ACM02"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("checkin: %v", err)
	}

	out, _, err := runCLI(t, []string{"session", "cancel"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session cancel: %v", err)
	}
	requireContains(t, out, "cancelled")

	out, _, err = runCLI(t, []string{"session", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("session status: %v", err)
	}
	requireContains(t, out, "idle")
}

func TestStatusReportsNotRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "Attendance")
}

func TestShowPrintsLogLines(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := appendLine(env.logPath, "badge decoded on /dev/video0"); err != nil {
		t.Fatalf("append log line: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", "-n", "5"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	requireContains(t, out, "badge decoded on /dev/video0")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
