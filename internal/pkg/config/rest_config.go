package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding file settings, e.g. SCANWARDEN_DATABASE_DSN
const EnvPrefix = "SCANWARDEN"

// RestConfig holds all settings of the REST API server
type RestConfig struct {
	Port            string                  `mapstructure:"port" validate:"required,numeric"`
	Logger          LoggerSettings          `mapstructure:"logger"`
	Database        DatabaseSettings        `mapstructure:"database"`
	ReportConnector ReportConnectorSettings `mapstructure:"report_connector"`
	Redis           RedisSettings           `mapstructure:"redis"`
	Scanners        ScannerSettings         `mapstructure:"scanners"`
	SLA             SLASettings             `mapstructure:"sla"`
	Signing         SigningSettings         `mapstructure:"signing"`
	PlanPath        string                  `mapstructure:"plan_path"`
}

// Validate checks the top level fields and every settings section
func (c *RestConfig) Validate() error {
	validate := validator.New()

	if err := validate.Var(c.Port, "required,numeric"); err != nil {
		return fmt.Errorf("validation failed for port: %w", err)
	}

	sections := []interface{ Validate() error }{
		&c.Logger,
		&c.Database,
		&c.ReportConnector,
		&c.Redis,
		&c.Scanners,
		&c.SLA,
		&c.Signing,
	}
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// InitializeRestConfig reads the YAML file at path, applies SCANWARDEN_* environment overrides and validates the result
func InitializeRestConfig(path string) (*RestConfig, error) {
	v := viper.New()
	setRestDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg RestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Logger.ApplyDefaults()
	cfg.Scanners.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setRestDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("logger.log_level", LogLevelInfo)
	v.SetDefault("logger.log_type", LogTypeConsole)
	v.SetDefault("database.type", SqliteDbType)
	v.SetDefault("database.dsn", "scan-warden.db")
	v.SetDefault("report_connector.provider", LocalProvider)
	v.SetDefault("report_connector.local_path", "reports")
	v.SetDefault("scanners.workers", DefaultScanWorkers)
	v.SetDefault("scanners.timeout", DefaultScanTimeout)
	v.SetDefault("signing.private_key_path", "keys/report-signing.pem")
	v.SetDefault("signing.public_key_path", "keys/report-signing.pub.pem")
}
