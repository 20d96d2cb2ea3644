package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestResolveCredential_FlagWins(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cred, err := resolveCredential(cmd, "from-flag", "S1")
	if err != nil {
		t.Fatalf("resolveCredential: %v", err)
	}
	if cred != "from-flag" {
		t.Errorf("cred = %q, want flag value", cred)
	}
}

func TestPromptCredential_PipedInput(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader("secret\n"))

	cred, err := promptCredential(cmd, "S1")
	if err != nil {
		t.Fatalf("promptCredential: %v", err)
	}
	if cred != "secret" {
		t.Errorf("cred = %q, want %q", cred, "secret")
	}
	if !strings.Contains(out.String(), "Credential for S1") {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestPromptCredential_EmptyInput(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(""))

	if _, err := promptCredential(cmd, "S1"); err == nil {
		t.Error("expected error for empty input")
	}
}
