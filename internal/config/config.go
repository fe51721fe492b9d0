package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	PHAUsername      string `mapstructure:"pha_username"`
	PHAPassword      string `mapstructure:"pha_password"`
	PHAInspectionURL string `mapstructure:"pha_inspection_url"`

	BOBAPIKey                string `mapstructure:"bob_api_key"`
	BOBInstance              string `mapstructure:"bob_instance"`
	BOBMasterDataPath        string `mapstructure:"bob_master_data_path"`
	BOBIntegrationGetPath    string `mapstructure:"bob_integration_get_path"`
	BOBIntegrationUpdatePath string `mapstructure:"bob_integration_update_path"`

	CustomerCode string `mapstructure:"customer_code"`
	SourceName   string `mapstructure:"source_name"`

	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"`
	PublishersFile     string        `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and configs/.env.
// appName names the job; it seeds app_name and the default log file.
func Load(appName string) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	appName = strings.TrimSpace(appName)
	if appName == "" {
		appName = "pha-bob-sync"
	}

	v := viper.New()

	v.SetDefault("app_name", appName)
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "debug")
	v.SetDefault("log_file", fmt.Sprintf("./logs/%s.log", appName))

	v.SetDefault("pha_username", "")
	v.SetDefault("pha_password", "")
	v.SetDefault("pha_inspection_url", "https://www.pha-web.com/inspectionAPI/inspection/activetenants")

	v.SetDefault("bob_api_key", "")
	v.SetDefault("bob_instance", "https://api-staging.bob.ai")
	v.SetDefault("bob_master_data_path", "/api/masters/create_new_data")
	v.SetDefault("bob_integration_get_path", "/api/data_logs/get_integration_data")
	v.SetDefault("bob_integration_update_path", "/api/data_logs/update_integration_data")

	v.SetDefault("customer_code", "TX009")
	v.SetDefault("source_name", "WEB INSPECTION")

	v.SetDefault("http_timeout_seconds", 60)
	v.SetDefault("requests_per_second", 0) // 0 disables pacing
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}

// Validate checks that credentials and endpoints are usable.
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"pha_username":       c.PHAUsername,
		"pha_password":       c.PHAPassword,
		"pha_inspection_url": c.PHAInspectionURL,
		"bob_api_key":        c.BOBAPIKey,
		"bob_instance":       c.BOBInstance,
	}
	for _, key := range []string{"pha_username", "pha_password", "pha_inspection_url", "bob_api_key", "bob_instance"} {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("invalid http_timeout_seconds (must be positive seconds)"))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("invalid requests_per_second (must not be negative)"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// Redacted returns the config as a loggable map with secrets masked.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"app_name":                    c.AppName,
		"app_env":                     c.Env,
		"log_level":                   c.LogLevel,
		"log_file":                    c.LogFile,
		"pha_username":                c.PHAUsername,
		"pha_password":                mask(c.PHAPassword),
		"pha_inspection_url":          c.PHAInspectionURL,
		"bob_api_key":                 mask(c.BOBAPIKey),
		"bob_instance":                c.BOBInstance,
		"bob_master_data_path":        c.BOBMasterDataPath,
		"bob_integration_get_path":    c.BOBIntegrationGetPath,
		"bob_integration_update_path": c.BOBIntegrationUpdatePath,
		"customer_code":               c.CustomerCode,
		"source_name":                 c.SourceName,
		"http_timeout_seconds":        c.HTTPTimeoutSeconds,
		"requests_per_second":         c.RequestsPerSecond,
		"publishers_file":             c.PublishersFile,
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
