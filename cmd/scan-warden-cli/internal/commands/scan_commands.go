package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/export"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/probe"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// ScanCommandHandler runs scanners from the command line, either standalone or tracked in the findings database.
type ScanCommandHandler struct {
	registry scans.ScannerRegistry
	settings config.ScannerSettings
	logger   logger.Logger
	now      func() time.Time
	exit     func(code int)
}

// NewScanCommandHandler initializes a ScanCommandHandler with every built-in scanner registered
func NewScanCommandHandler() (*ScanCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	settings := defaultScannerSettings()
	return &ScanCommandHandler{
		registry: newDefaultRegistry(settings, loggerInstance),
		settings: settings,
		logger:   loggerInstance,
		now:      func() time.Time { return time.Now().UTC() },
		exit:     os.Exit,
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseThreshold returns the severity given to --fail-on, nil when unset
func parseThreshold(value string) (*findings.Severity, error) {
	if value == "" {
		return nil, nil
	}
	sev := findings.Severity(strings.ToUpper(value))
	for _, known := range findings.Severities {
		if sev == known {
			return &sev, nil
		}
	}
	return nil, fmt.Errorf("unknown severity %q", value)
}

// exceeds reports whether any open finding is at least as severe as threshold
func exceeds(list []*findings.Finding, threshold findings.Severity) bool {
	for _, f := range list {
		if f.Status == findings.StatusOpen && f.Severity.Rank() >= threshold.Rank() {
			return true
		}
	}
	return false
}

// prepareStandalone gives untracked findings the state a first sighting would get
func prepareStandalone(list []*findings.Finding, policy *sla.Policy, now time.Time) {
	for _, f := range list {
		f.Status = findings.StatusOpen
		f.FirstSeen = now
		f.LastSeen = now
		f.DueAt = policy.DueAt(f.Severity, now)
	}
	reports.SortByPriority(list)
}

// renderStandalone renders findings that were never stored
func (commandHandler *ScanCommandHandler) renderStandalone(format string, list []*findings.Finding) ([]byte, error) {
	policy := sla.DefaultPolicy()
	now := commandHandler.now()
	prepareStandalone(list, policy, now)
	summary := reports.Summarize(list, policy, now, reports.DefaultTopN)
	return export.NewRenderer(Version).Render(format, summary, list)
}

// runStandalone scans target, writes the rendered report and applies --fail-on
func (commandHandler *ScanCommandHandler) runStandalone(cmd *cobra.Command, s scans.Scanner, target string) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		commandHandler.logger.Error("invalid output flag ", err)
		return
	}
	outputFile, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}
	failOn, err := cmd.Flags().GetString("fail-on")
	if err != nil {
		commandHandler.logger.Error("invalid fail-on flag ", err)
		return
	}
	threshold, err := parseThreshold(failOn)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	if _, err := reports.FileExtension(format); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Running ", s.Name(), " against ", target)
	list, err := s.Scan(commandContext(cmd), target)
	if err != nil {
		commandHandler.logger.Error(err)
		commandHandler.exit(1)
		return
	}

	data, err := commandHandler.renderStandalone(format, list)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	if err := writeOutput(cmd, outputFile, data); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info(s.Name(), " reported ", len(list), " findings")

	if threshold != nil && exceeds(list, *threshold) {
		commandHandler.logger.Error("Findings at or above ", *threshold, " present")
		commandHandler.exit(1)
	}
}

// ScanCmd runs a tool against a target. With --track the findings are merged into the database instead of printed.
func (commandHandler *ScanCommandHandler) ScanCmd(cmd *cobra.Command, args []string) {
	tool, err := cmd.Flags().GetString("with")
	if err != nil {
		commandHandler.logger.Error("invalid with flag ", err)
		return
	}
	track, err := cmd.Flags().GetBool("track")
	if err != nil {
		commandHandler.logger.Error("invalid track flag ", err)
		return
	}
	target := args[0]

	s, ok := commandHandler.registry.Get(tool)
	if !ok {
		commandHandler.logger.Error(fmt.Errorf("%w: %s (available: %s)", scans.ErrUnknownTool, tool, strings.Join(commandHandler.registry.Names(), ", ")))
		return
	}

	if !track {
		commandHandler.runStandalone(cmd, s, target)
		return
	}

	opts, err := storeOptionsFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	st, err := openStore(opts, commandHandler.registry, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer st.close()

	ctx := commandContext(cmd)
	job, err := st.scanService.Trigger(ctx, tool, target, scans.TriggerManual, nil)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	st.scanService.Wait()

	job, err = st.scanService.GetByID(ctx, job.ID)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	printJob(cmd, job)
	if job.Status == scans.StatusFailed {
		commandHandler.exit(1)
	}
}

// ProbeCmd runs the built-in DAST probes against a live URL
func (commandHandler *ScanCommandHandler) ProbeCmd(cmd *cobra.Command, _ []string) {
	target, err := cmd.Flags().GetString("target")
	if err != nil {
		commandHandler.logger.Error("invalid target flag ", err)
		return
	}
	params, err := cmd.Flags().GetStringSlice("param")
	if err != nil {
		commandHandler.logger.Error("invalid param flag ", err)
		return
	}
	protected, err := cmd.Flags().GetStringSlice("protected")
	if err != nil {
		commandHandler.logger.Error("invalid protected flag ", err)
		return
	}
	loginPath, err := cmd.Flags().GetString("login")
	if err != nil {
		commandHandler.logger.Error("invalid login flag ", err)
		return
	}
	if _, err := probe.ParseTarget(target); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	probeSettings := commandHandler.settings.Probe
	suite := probe.NewSuite(probe.Options{
		Params:         params,
		ProtectedPaths: protected,
		LoginPath:      loginPath,
		Concurrency:    probeSettings.Concurrency,
	}, probeSettings.RequestTimeout, commandHandler.logger)

	commandHandler.logger.Info("Probe checks: ", strings.Join(suite.Checks(), ", "))
	commandHandler.runStandalone(cmd, scanner.NewProbeScanner(suite), target)
}

// ImportCmd ingests an existing tool report into the findings database
func (commandHandler *ScanCommandHandler) ImportCmd(cmd *cobra.Command, args []string) {
	tool, err := cmd.Flags().GetString("tool")
	if err != nil {
		commandHandler.logger.Error("invalid tool flag ", err)
		return
	}
	target, err := cmd.Flags().GetString("target")
	if err != nil {
		commandHandler.logger.Error("invalid target flag ", err)
		return
	}
	opts, err := storeOptionsFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	report, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	st, err := openStore(opts, commandHandler.registry, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer st.close()

	job, err := st.scanService.Import(commandContext(cmd), tool, target, report)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	printJob(cmd, job)
}

// ToolsCmd lists the registered scanners
func (commandHandler *ScanCommandHandler) ToolsCmd(cmd *cobra.Command, _ []string) {
	for _, name := range commandHandler.registry.Names() {
		s, _ := commandHandler.registry.Get(name)
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, s.Kind())
	}
}

func printJob(cmd *cobra.Command, job *scans.ScanJob) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scan %s %s\n", job.ID, job.Status)
	fmt.Fprintf(out, "  tool:     %s (%s)\n", job.Tool, job.Kind)
	fmt.Fprintf(out, "  target:   %s\n", job.Target)
	fmt.Fprintf(out, "  findings: %d (new %d, resolved %d)\n", job.FindingCount, job.NewCount, job.ResolvedCount)
	if job.Error != "" {
		fmt.Fprintf(out, "  error:    %s\n", job.Error)
	}
}

// addOutputFlags registers the report output flags of standalone scans
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", DefaultOutputFormat, "Output format: json, markdown or sarif")
	cmd.Flags().StringP("output-file", "", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringP("fail-on", "", "", "Exit non-zero when a finding of this severity or above is present")
}

// InitScanCommands registers scan, probe, import and tools commands
func InitScanCommands(rootCmd *cobra.Command) error {
	handler, err := NewScanCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create scan command handler %w", err)
	}

	var scanCmd = &cobra.Command{
		Use:   "scan <target>",
		Short: "Run a security tool against a target",
		Args:  cobra.ExactArgs(1),
		Run:   handler.ScanCmd,
	}
	scanCmd.Flags().StringP("with", "w", "", "Tool to run (see the tools command)")
	scanCmd.Flags().BoolP("track", "", false, "Merge the findings into the findings database")
	addOutputFlags(scanCmd)
	addStoreFlags(scanCmd)
	if err := scanCmd.MarkFlagRequired("with"); err != nil {
		return fmt.Errorf("failed to mark with flag required: %w", err)
	}
	rootCmd.AddCommand(scanCmd)

	var probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Run the built-in DAST probes against a live URL",
		Run:   handler.ProbeCmd,
	}
	probeCmd.Flags().StringP("target", "", "", "Base URL of the application under test")
	probeCmd.Flags().StringSliceP("param", "", nil, "Query parameter receiving injection payloads (repeatable)")
	probeCmd.Flags().StringSliceP("protected", "", nil, "Path that must reject unauthenticated requests (repeatable)")
	probeCmd.Flags().StringP("login", "", "", "Login path accepting a JSON username/password body")
	addOutputFlags(probeCmd)
	if err := probeCmd.MarkFlagRequired("target"); err != nil {
		return fmt.Errorf("failed to mark target flag required: %w", err)
	}
	rootCmd.AddCommand(probeCmd)

	var importCmd = &cobra.Command{
		Use:   "import <report-file>",
		Short: "Import an existing tool report into the findings database",
		Args:  cobra.ExactArgs(1),
		Run:   handler.ImportCmd,
	}
	importCmd.Flags().StringP("tool", "", "", "Tool that produced the report")
	importCmd.Flags().StringP("target", "", "", "Target the report was produced for")
	addStoreFlags(importCmd)
	for _, name := range []string{"tool", "target"} {
		if err := importCmd.MarkFlagRequired(name); err != nil {
			return fmt.Errorf("failed to mark %s flag required: %w", name, err)
		}
	}
	rootCmd.AddCommand(importCmd)

	var toolsCmd = &cobra.Command{
		Use:   "tools",
		Short: "List the available scanners",
		Run:   handler.ToolsCmd,
	}
	rootCmd.AddCommand(toolsCmd)

	return nil
}
