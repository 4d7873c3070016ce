// Package main is the entry point for the scan-warden-cli application.
// It registers the scan, findings, report and key commands and executes the command-line interface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	commands "github.com/MGTheTrain/scan-warden/cmd/scan-warden-cli/internal/commands"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	commands.Version = version

	rootCmd := &cobra.Command{
		Use:     "scan-warden-cli",
		Short:   "Security scan orchestration CLI tool",
		Version: version,
		Long: `scan-warden-cli runs SAST, SCA, IaC and DAST tools against a target and
renders the findings as JSON, Markdown or SARIF.

Findings can also be tracked in a local sqlite database (--db), where they are
deduplicated across runs, given remediation deadlines per severity and exported
as signed reports that can be verified offline with the verify command.`,
	}

	if err := initializeCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) error {
	if err := commands.InitScanCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize scan commands: %w", err)
	}

	if err := commands.InitFindingCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize findings commands: %w", err)
	}

	if err := commands.InitReportCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize report commands: %w", err)
	}

	return nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
