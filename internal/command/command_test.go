package command

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCommand(t *testing.T) {
	output, err := RunCommand("echo", "hello")
	if err != nil {
		t.Fatalf("RunCommand failed: %v", err)
	}
	if strings.TrimSpace(output) != "hello" {
		t.Errorf("got %q, want %q", output, "hello")
	}
}

func TestRunCommandFailure(t *testing.T) {
	_, err := RunCommand("false")
	if err == nil {
		t.Fatal("expected error for failing command")
	}
	if !strings.Contains(err.Error(), "exit code") {
		t.Errorf("error should mention exit code: %v", err)
	}
}

func TestRunCommandMissingBinary(t *testing.T) {
	_, err := RunCommand("definitely-not-a-real-binary-xyz")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRunCommandContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := RunCommandContext(ctx, "sleep", "10")
	if err == nil {
		t.Fatal("expected error for canceled command")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("command was not terminated promptly: %v", elapsed)
	}
}
