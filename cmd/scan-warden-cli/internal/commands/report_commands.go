package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/app"
	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// Key file names written by keys generate
const (
	PrivateKeyFileName = "report-signing.pem"
	PublicKeyFileName  = "report-signing.pub.pem"
)

// ReportCommandHandler generates signed reports and verifies them offline
type ReportCommandHandler struct {
	logger logger.Logger
}

// NewReportCommandHandler initializes a ReportCommandHandler with a configured logger
func NewReportCommandHandler() (*ReportCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return &ReportCommandHandler{logger: loggerInstance}, nil
}

func reportQueryFromFlags(cmd *cobra.Command) (*findings.FindingQuery, error) {
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
	if *query == (findings.FindingQuery{}) {
		return nil, nil
	}
	return query, query.Validate()
}

// GenerateReportCmd renders, signs and archives a report of the tracked findings.
// With --output-file a copy of the report and its signature is written there as well.
func (commandHandler *ReportCommandHandler) GenerateReportCmd(cmd *cobra.Command, _ []string) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		commandHandler.logger.Error("invalid format flag ", err)
		return
	}
	outputFile, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}
	query, err := reportQueryFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	opts, err := storeOptionsFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	st, err := openStore(opts, scanner.NewRegistry(), commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	defer st.close()

	ctx := commandContext(cmd)
	meta, err := st.reportService.Generate(ctx, format, query)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "report %s\n", meta.ID)
	fmt.Fprintf(out, "  file:      %s\n", filepath.Join(opts.reportDir, meta.Name))
	fmt.Fprintf(out, "  signature: %s\n", filepath.Join(opts.reportDir, meta.Name+app.SignatureSuffix))
	fmt.Fprintf(out, "  sha256:    %s\n", meta.SHA256)
	fmt.Fprintf(out, "  findings:  %d\n", meta.FindingCount)

	if outputFile == "" {
		return
	}
	data, err := st.reportService.Download(ctx, meta.ID)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	if err := writeOutput(cmd, outputFile, data); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	if err := writeOutput(cmd, outputFile+app.SignatureSuffix, []byte(meta.Signature)); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Report copied to ", outputFile)
}

// VerifyReportCmd checks a report file against its detached signature and a public key
func (commandHandler *ReportCommandHandler) VerifyReportCmd(cmd *cobra.Command, _ []string) {
	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		commandHandler.logger.Error("invalid report flag ", err)
		return
	}
	signaturePath, err := cmd.Flags().GetString("sig")
	if err != nil {
		commandHandler.logger.Error("invalid sig flag ", err)
		return
	}
	publicKeyPath, err := cmd.Flags().GetString("pub")
	if err != nil {
		commandHandler.logger.Error("invalid pub flag ", err)
		return
	}
	if signaturePath == "" {
		signaturePath = reportPath + app.SignatureSuffix
	}

	valid, err := verifyReportFile(reportPath, signaturePath, publicKeyPath, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	if valid {
		fmt.Fprintf(cmd.OutOrStdout(), "Signature valid for %s\n", reportPath)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Signature invalid for %s\n", reportPath)
	}
}

func verifyReportFile(reportPath, signaturePath, publicKeyPath string, log logger.Logger) (bool, error) {
	publicKey, err := cryptography.ReadPublicKey(publicKeyPath)
	if err != nil {
		return false, err
	}
	signature, err := cryptography.ReadSignatureFile(signaturePath)
	if err != nil {
		return false, err
	}
	content, err := os.ReadFile(filepath.Clean(reportPath))
	if err != nil {
		return false, err
	}

	verifier, err := cryptography.NewECDSASigner(nil, publicKey, log)
	if err != nil {
		return false, err
	}
	return verifier.Verify(content, signature)
}

// GenerateKeysCmd creates a report signing key pair in a directory
func (commandHandler *ReportCommandHandler) GenerateKeysCmd(cmd *cobra.Command, _ []string) {
	dir, err := cmd.Flags().GetString("out")
	if err != nil {
		commandHandler.logger.Error("invalid out flag ", err)
		return
	}

	privateKeyPath := filepath.Join(dir, PrivateKeyFileName)
	if _, err := os.Stat(privateKeyPath); err == nil {
		commandHandler.logger.Error("refusing to overwrite existing key ", privateKeyPath)
		return
	}

	privateKey, err := cryptography.GenerateKeys()
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	if err := cryptography.SavePrivateKeyToFile(privateKey, privateKeyPath); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	publicKeyPath := filepath.Join(dir, PublicKeyFileName)
	if err := cryptography.SavePublicKeyToFile(&privateKey.PublicKey, publicKeyPath); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "private key: %s\npublic key:  %s\n", privateKeyPath, publicKeyPath)
}

// InitReportCommands registers report, verify and keys commands
func InitReportCommands(rootCmd *cobra.Command) error {
	handler, err := NewReportCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create report command handler %w", err)
	}

	var reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Generate a signed report of the tracked findings",
		Run:   handler.GenerateReportCmd,
	}
	reportCmd.Flags().StringP("format", "f", DefaultOutputFormat, "Report format: json, markdown or sarif")
	reportCmd.Flags().StringP("output-file", "", "", "Also copy the report and its .sig to this path")
	reportCmd.Flags().StringP("tool", "", "", "Only findings of this tool")
	reportCmd.Flags().StringP("target", "", "", "Only findings of this target")
	reportCmd.Flags().StringP("severity", "", "", "Only findings of this severity")
	reportCmd.Flags().StringP("status", "", "", "Only findings in this status")
	addStoreFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a report against its detached signature",
		Run:   handler.VerifyReportCmd,
	}
	verifyCmd.Flags().StringP("report", "", "", "Path to the report file")
	verifyCmd.Flags().StringP("sig", "", "", "Path to the hex encoded signature, defaults to <report>.sig")
	verifyCmd.Flags().StringP("pub", "", DefaultPublicKeyPath, "Path to the PEM encoded public key")
	if err := verifyCmd.MarkFlagRequired("report"); err != nil {
		return fmt.Errorf("failed to mark report flag required: %w", err)
	}
	rootCmd.AddCommand(verifyCmd)

	var keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Manage report signing keys",
	}
	var generateKeysCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate an ECDSA P-256 report signing key pair",
		Run:   handler.GenerateKeysCmd,
	}
	generateKeysCmd.Flags().StringP("out", "", "keys", "Directory to write the key pair to")
	keysCmd.AddCommand(generateKeysCmd)
	rootCmd.AddCommand(keysCmd)

	return nil
}
