package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MGTheTrain/scan-warden/internal/app"
	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/connector"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/export"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/persistence"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/throttle"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Flag defaults shared by the commands
const (
	DefaultDBPath         = "scan-warden.db"
	DefaultReportDir      = "reports"
	DefaultPrivateKeyPath = "keys/report-signing.pem"
	DefaultPublicKeyPath  = "keys/report-signing.pub.pem"
	DefaultOutputFormat   = reports.FormatMarkdown
)

// Version is written into SARIF output and set by main
var Version = "dev"

func setupLogger() (logger.Logger, error) {
	settings := &config.LoggerSettings{
		LogLevel: config.LogLevelInfo,
		LogType:  config.LogTypeConsole,
		FilePath: "",
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// defaultScannerSettings returns tool settings for commands that run without a config file
func defaultScannerSettings() config.ScannerSettings {
	settings := config.ScannerSettings{}
	settings.ApplyDefaults()
	return settings
}

// store bundles the services backed by the local sqlite database
type store struct {
	db             *gorm.DB
	scanService    scans.ScanService
	findingService findings.FindingService
	reportService  reports.ReportService
	policy         *sla.Policy
}

func (s *store) close() {
	s.scanService.Wait()
	_ = persistence.CloseDB(s.db)
}

// storeOptions locates the files a store works on
type storeOptions struct {
	dbPath         string
	reportDir      string
	privateKeyPath string
	publicKeyPath  string
}

// storeOptionsFromFlags reads the persistent flags registered by addStoreFlags
func storeOptionsFromFlags(cmd *cobra.Command) (storeOptions, error) {
	var opts storeOptions
	var err error
	if opts.dbPath, err = cmd.Flags().GetString("db"); err != nil {
		return opts, fmt.Errorf("invalid db flag: %w", err)
	}
	if opts.reportDir, err = cmd.Flags().GetString("report-dir"); err != nil {
		return opts, fmt.Errorf("invalid report-dir flag: %w", err)
	}
	if opts.privateKeyPath, err = cmd.Flags().GetString("private-key"); err != nil {
		return opts, fmt.Errorf("invalid private-key flag: %w", err)
	}
	if opts.publicKeyPath, err = cmd.Flags().GetString("public-key"); err != nil {
		return opts, fmt.Errorf("invalid public-key flag: %w", err)
	}
	return opts, nil
}

// addStoreFlags registers the flags of commands that use the findings database
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("db", "", DefaultDBPath, "Path to the sqlite findings database")
	cmd.Flags().StringP("report-dir", "", DefaultReportDir, "Directory archiving generated reports")
	cmd.Flags().StringP("private-key", "", DefaultPrivateKeyPath, "ECDSA private key signing reports, generated when missing")
	cmd.Flags().StringP("public-key", "", DefaultPublicKeyPath, "ECDSA public key written next to a generated private key")
}

// openStore connects to the sqlite database and wires the application services
func openStore(opts storeOptions, registry scans.ScannerRegistry, log logger.Logger) (*store, error) {
	db, err := persistence.NewDBConnection(config.DatabaseSettings{
		Type: config.SqliteDbType,
		DSN:  opts.dbPath,
	})
	if err != nil {
		return nil, err
	}
	if err := persistence.Migrate(db); err != nil {
		_ = persistence.CloseDB(db)
		return nil, err
	}

	s, err := wireStore(db, opts, registry, log)
	if err != nil {
		_ = persistence.CloseDB(db)
		return nil, err
	}
	return s, nil
}

func wireStore(db *gorm.DB, opts storeOptions, registry scans.ScannerRegistry, log logger.Logger) (*store, error) {
	findingRepo, err := persistence.NewGormFindingRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create finding repository: %w", err)
	}
	scanRepo, err := persistence.NewGormScanRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan repository: %w", err)
	}
	reportRepo, err := persistence.NewGormReportRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create report repository: %w", err)
	}

	policy := sla.DefaultPolicy()

	ingestService, err := app.NewIngestService(findingRepo, policy, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest service: %w", err)
	}
	findingService, err := app.NewFindingService(findingRepo, policy, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create finding service: %w", err)
	}
	scanService, err := app.NewScanService(registry, scanRepo, ingestService, throttle.NoopThrottle{}, 1, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan service: %w", err)
	}

	reportConnector, err := connector.NewLocalReportConnector(opts.reportDir, log)
	if err != nil {
		return nil, err
	}
	signer, err := cryptography.LoadOrGenerateSigner(&config.SigningSettings{
		PrivateKeyPath: opts.privateKeyPath,
		PublicKeyPath:  opts.publicKeyPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	reportService, err := app.NewReportService(findingRepo, reportRepo, reportConnector, export.NewRenderer(Version), signer, policy, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create report service: %w", err)
	}

	return &store{
		db:             db,
		scanService:    scanService,
		findingService: findingService,
		reportService:  reportService,
		policy:         policy,
	}, nil
}

// newDefaultRegistry registers every built-in scanner with default settings
func newDefaultRegistry(settings config.ScannerSettings, log logger.Logger) *scanner.Registry {
	return scanner.NewDefaultRegistry(settings, scanner.NewExecRunner(), log)
}

// writeOutput writes data to path, or to the command output when path is empty
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
