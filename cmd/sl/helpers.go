package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stitchline/stitchline/internal/config"
	"github.com/stitchline/stitchline/internal/db"
	"github.com/stitchline/stitchline/internal/models"
	"github.com/stitchline/stitchline/internal/notify"
	"github.com/stitchline/stitchline/internal/registry"
	"github.com/stitchline/stitchline/internal/verify"
	"golang.org/x/term"
	"gorm.io/gorm"
)

const defaultConfigPath = "stitchline.yaml"

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.DB.Database, err)
	}

	return cfg, gormDB, nil
}

func gateFromConfig(cfg *config.Config, gormDB *gorm.DB) *verify.Gate {
	return verify.NewGate(gormDB, verify.ForMode(cfg.Verify.Mode))
}

// promptCredential reads a credential without echo when stdin is a
// terminal; piped input falls back to a plain line read so scripts and
// tests still work.
func promptCredential(cmd *cobra.Command, who string) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Credential for %s: ", who)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read credential: %w", err)
		}
		return string(raw), nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return "", fmt.Errorf("read credential: no input")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

// resolveCredential uses the --credential flag when given, otherwise
// prompts. The flag exists for scripted floor terminals; interactive use
// should leave it unset.
func resolveCredential(cmd *cobra.Command, flagValue, who string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return promptCredential(cmd, who)
}

// verifiedPerson resolves the credential, gates on role + credential, and
// returns the personnel row for the employee number.
func verifiedPerson(cmd *cobra.Command, cfg *config.Config, gormDB *gorm.DB, role, employeeNo, flagCredential string) (*models.Personnel, error) {
	credential, err := resolveCredential(cmd, flagCredential, employeeNo)
	if err != nil {
		return nil, err
	}
	gate := gateFromConfig(cfg, gormDB)
	if !gate.Verify(role, employeeNo, credential) {
		return nil, fmt.Errorf("%w: %s %s", verify.ErrFailed, role, employeeNo)
	}
	people, err := registry.ListPersonnel(gormDB, registry.PersonnelFilter{
		EmployeeNo: employeeNo,
		Role:       role,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	if len(people) == 0 {
		return nil, fmt.Errorf("%w: %s %s", verify.ErrFailed, role, employeeNo)
	}
	return &people[0], nil
}

// announce delivers a floor announcement to every configured chat adapter.
// Best-effort: adapter failures are logged to stderr, never returned.
func announce(cmd *cobra.Command, cfg *config.Config, evt notify.Event) {
	if cfg.Notify.Slack.BotToken == "" && cfg.Notify.Discord.BotToken == "" {
		return
	}
	log := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	notifier, err := notify.FromConfig(cfg.Notify, log)
	if err != nil {
		log.Error().Err(err).Msg("build notifier")
		return
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	notifier.Connect(ctx)
	notifier.Announce(ctx, evt)
	notifier.Close()
}
