package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// Listing formats
const (
	ListFormatTable = "table"
	ListFormatJSON  = "json"
)

// FindingCommandHandler reads and triages tracked findings
type FindingCommandHandler struct {
	logger logger.Logger
	now    func() time.Time
}

// NewFindingCommandHandler initializes a FindingCommandHandler with a configured logger
func NewFindingCommandHandler() (*FindingCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return &FindingCommandHandler{
		logger: loggerInstance,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (commandHandler *FindingCommandHandler) open(cmd *cobra.Command) (*store, error) {
	opts, err := storeOptionsFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	// findings commands never run scanners
	return openStore(opts, scanner.NewRegistry(), commandHandler.logger)
}

func findingQueryFromFlags(cmd *cobra.Command) (*findings.FindingQuery, error) {
	query := findings.NewFindingQuery()
	var err error
	if query.Tool, err = cmd.Flags().GetString("tool"); err != nil {
		return nil, err
	}
	if query.Target, err = cmd.Flags().GetString("target"); err != nil {
		return nil, err
	}
	if query.Severity, err = cmd.Flags().GetString("severity"); err != nil {
		return nil, err
	}
	query.Severity = strings.ToUpper(query.Severity)
	if query.Status, err = cmd.Flags().GetString("status"); err != nil {
		return nil, err
	}
	if query.Overdue, err = cmd.Flags().GetBool("overdue"); err != nil {
		return nil, err
	}
	if query.Limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return nil, err
	}
	query.SortBy = "severity"
	query.SortOrder = "desc"

	if err := query.Validate(); err != nil {
		return nil, err
	}
	return query, nil
}

// ListFindingsCmd prints tracked findings, most severe first
func (commandHandler *FindingCommandHandler) ListFindingsCmd(cmd *cobra.Command, _ []string) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		commandHandler.logger.Error("invalid output flag ", err)
		return
	}
	query, err := findingQueryFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	st, err := commandHandler.open(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer st.close()

	list, err := st.findingService.List(commandContext(cmd), query)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if err := writeFindings(cmd.OutOrStdout(), format, list, commandHandler.now()); err != nil {
		commandHandler.logger.Error(err)
	}
}

// UpdateFindingCmd moves a finding to another status
func (commandHandler *FindingCommandHandler) UpdateFindingCmd(cmd *cobra.Command, args []string) {
	status, err := cmd.Flags().GetString("status")
	if err != nil {
		commandHandler.logger.Error("invalid status flag ", err)
		return
	}
	justification, err := cmd.Flags().GetString("justification")
	if err != nil {
		commandHandler.logger.Error("invalid justification flag ", err)
		return
	}

	st, err := commandHandler.open(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer st.close()

	f, err := st.findingService.UpdateStatus(commandContext(cmd), args[0], findings.Status(status), justification)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "finding %s is now %s\n", f.ID, f.Status)
}

// SLACmd prints remediation deadline compliance per severity
func (commandHandler *FindingCommandHandler) SLACmd(cmd *cobra.Command, _ []string) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		commandHandler.logger.Error("invalid output flag ", err)
		return
	}

	st, err := commandHandler.open(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer st.close()

	report, err := st.reportService.SLA(commandContext(cmd))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if err := writeSLA(cmd.OutOrStdout(), format, report); err != nil {
		commandHandler.logger.Error(err)
	}
}

func writeFindings(w io.Writer, format string, list []*findings.Finding, now time.Time) error {
	switch format {
	case ListFormatJSON:
		if list == nil {
			list = []*findings.Finding{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case ListFormatTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSEVERITY\tSTATUS\tTOOL\tRULE\tLOCATION\tDUE")
		for _, f := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				f.ID, f.Severity, f.Status, f.Tool, f.RuleID, location(f), due(f, now))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeSLA(w io.Writer, format string, report *sla.Report) error {
	switch format {
	case ListFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case ListFormatTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SEVERITY\tWINDOW\tOPEN\tOVERDUE\tIN TIME\tLATE\tCOMPLIANCE\tMTTR")
		for _, s := range report.Severities {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.1f%%\t%s\n",
				s.Severity, window(s.Window), s.Open, s.Overdue, s.ResolvedInTime, s.ResolvedLate, s.CompliancePct, s.MeanTimeToFix.Round(time.Minute))
		}
		fmt.Fprintf(tw, "TOTAL\t\t\t%d\t\t\t%.1f%%\t\n", report.TotalOverdue, report.CompliancePct)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func location(f *findings.Finding) string {
	if f.FilePath == "" {
		return f.Target
	}
	if f.StartLine > 0 {
		return fmt.Sprintf("%s:%d", f.FilePath, f.StartLine)
	}
	return f.FilePath
}

func due(f *findings.Finding, now time.Time) string {
	if f.DueAt == nil {
		return "-"
	}
	if f.IsOverdue(now) {
		return f.DueAt.Format(time.DateOnly) + " (overdue)"
	}
	return f.DueAt.Format(time.DateOnly)
}

func window(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.String()
}

// InitFindingCommands registers findings and sla commands
func InitFindingCommands(rootCmd *cobra.Command) error {
	handler, err := NewFindingCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create findings command handler %w", err)
	}

	var findingsCmd = &cobra.Command{
		Use:   "findings",
		Short: "Inspect and triage tracked findings",
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List tracked findings",
		Run:   handler.ListFindingsCmd,
	}
	listCmd.Flags().StringP("tool", "", "", "Only findings of this tool")
	listCmd.Flags().StringP("target", "", "", "Only findings of this target")
	listCmd.Flags().StringP("severity", "", "", "Only findings of this severity")
	listCmd.Flags().StringP("status", "", "", "Only findings in this status")
	listCmd.Flags().BoolP("overdue", "", false, "Only open findings past their due date")
	listCmd.Flags().IntP("limit", "", 0, "Maximum number of findings")
	listCmd.Flags().StringP("output", "o", ListFormatTable, "Output format: table or json")
	addStoreFlags(listCmd)
	findingsCmd.AddCommand(listCmd)

	var updateCmd = &cobra.Command{
		Use:   "update <finding-id>",
		Short: "Change the status of a finding",
		Args:  cobra.ExactArgs(1),
		Run:   handler.UpdateFindingCmd,
	}
	updateCmd.Flags().StringP("status", "", "", "New status: open, resolved, accepted or false_positive")
	updateCmd.Flags().StringP("justification", "", "", "Reason, required for accepted and false_positive")
	addStoreFlags(updateCmd)
	if err := updateCmd.MarkFlagRequired("status"); err != nil {
		return fmt.Errorf("failed to mark status flag required: %w", err)
	}
	findingsCmd.AddCommand(updateCmd)

	rootCmd.AddCommand(findingsCmd)

	var slaCmd = &cobra.Command{
		Use:   "sla",
		Short: "Show remediation deadline compliance",
		Run:   handler.SLACmd,
	}
	slaCmd.Flags().StringP("output", "o", ListFormatTable, "Output format: table or json")
	addStoreFlags(slaCmd)
	rootCmd.AddCommand(slaCmd)

	return nil
}
