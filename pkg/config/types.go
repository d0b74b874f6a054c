/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mfreeman451/fleetradar/pkg/models"
	"gopkg.in/yaml.v3"
)

// Duration accepts either a Go duration string ("30s") or a number of
// nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.parse(value)
	default:
		return errInvalidDuration
	}
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errInvalidDuration
	}

	if node.Tag == "!!int" {
		var ns int64
		if err := node.Decode(&ns); err != nil {
			return err
		}

		*d = Duration(time.Duration(ns))

		return nil
	}

	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) parse(s string) error {
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidDuration, err)
	}

	*d = Duration(dur)

	return nil
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

const (
	defaultListenAddr        = ":8000"
	defaultDBPath            = "fleetradar.db"
	defaultLogLevel          = "info"
	defaultLogFormat         = "json"
	defaultShutdownTimeout   = 15 * time.Second
	defaultJamfTimeout       = 30 * time.Second
	defaultRequestsPerSecond = 20
	defaultBurst             = 10
	defaultMaxRetries        = 2
	defaultRetryDelay        = 500 * time.Millisecond
	defaultMaxRetryDelay     = 5 * time.Second
	defaultPageSize          = 100
	defaultCacheTTL          = 300 * time.Second
	defaultReapInterval      = time.Hour
	defaultRetention         = 24 * time.Hour
	defaultRedisKeyPrefix    = "fleetradar:"
	defaultMaxConcurrency    = 10
	defaultDeviceTimeout     = 30 * time.Second
)

// Config is the configuration of the fleetradar service.
type Config struct {
	ListenAddr      string         `json:"listen_addr" yaml:"listen_addr"`
	DBPath          string         `json:"db_path" yaml:"db_path"`
	CORSOrigins     []string       `json:"cors_origins" yaml:"cors_origins"`
	ShutdownTimeout Duration       `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	Logging         LoggingConfig  `json:"logging" yaml:"logging"`
	Jamf            JamfConfig     `json:"jamf" yaml:"jamf"`
	Cache           CacheConfig    `json:"cache" yaml:"cache"`
	Monitor         MonitorConfig  `json:"monitor" yaml:"monitor"`
	Defaults        DefaultsConfig `json:"defaults" yaml:"defaults"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json or console
}

// JamfConfig holds the Jamf Pro connection and client tuning.
type JamfConfig struct {
	URL               string   `json:"url" yaml:"url"`
	ClientID          string   `json:"client_id" yaml:"client_id"`
	ClientSecret      string   `json:"client_secret" yaml:"client_secret"`
	Timeout           Duration `json:"timeout" yaml:"timeout"`
	RequestsPerSecond float64  `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int      `json:"burst" yaml:"burst"`
	// MaxRetries is a pointer so an explicit 0 disables retries.
	MaxRetries    *int     `json:"max_retries" yaml:"max_retries"`
	RetryDelay    Duration `json:"retry_delay" yaml:"retry_delay"`
	MaxRetryDelay Duration `json:"max_retry_delay" yaml:"max_retry_delay"`
	PageSize      int      `json:"page_size" yaml:"page_size"`
}

// CacheConfig selects where verdicts are cached and for how long.
type CacheConfig struct {
	Backend                     string      `json:"backend" yaml:"backend"`
	TTL                         Duration    `json:"ttl" yaml:"ttl"`
	InvalidateOnThresholdChange bool        `json:"invalidate_on_threshold_change" yaml:"invalidate_on_threshold_change"`
	ReapInterval                Duration    `json:"reap_interval" yaml:"reap_interval"`
	Retention                   Duration    `json:"retention" yaml:"retention"`
	Redis                       RedisConfig `json:"redis" yaml:"redis"`
}

// RedisConfig is used when Backend is "redis".
type RedisConfig struct {
	Addr      string `json:"addr" yaml:"addr"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
}

// MonitorConfig bounds batch evaluation.
type MonitorConfig struct {
	MaxConcurrency int      `json:"max_concurrency" yaml:"max_concurrency"`
	DeviceTimeout  Duration `json:"device_timeout" yaml:"device_timeout"`
}

// DefaultsConfig seeds the settings store on first run.
type DefaultsConfig struct {
	CheckInHours        int      `json:"check_in_hours" yaml:"check_in_hours"`
	ReconHours          int      `json:"recon_hours" yaml:"recon_hours"`
	PendingCommandHours int      `json:"pending_command_hours" yaml:"pending_command_hours"`
	ComplianceGroup     string   `json:"compliance_group" yaml:"compliance_group"`
	MonitoredGroups     []string `json:"monitored_groups" yaml:"monitored_groups"`
}

// Environment variables that override file values.
const (
	EnvJamfURL          = "FLEETRADAR_JAMF_URL"
	EnvJamfClientID     = "FLEETRADAR_JAMF_CLIENT_ID"
	EnvJamfClientSecret = "FLEETRADAR_JAMF_CLIENT_SECRET"
	EnvRedisPassword    = "FLEETRADAR_REDIS_PASSWORD"
	EnvLogLevel         = "LOG_LEVEL"
)

// ApplyEnv overrides secrets and the log level from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		key string
		dst *string
	}{
		{EnvJamfURL, &c.Jamf.URL},
		{EnvJamfClientID, &c.Jamf.ClientID},
		{EnvJamfClientSecret, &c.Jamf.ClientSecret},
		{EnvRedisPassword, &c.Cache.Redis.Password},
		{EnvLogLevel, &c.Logging.Level},
	}

	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

// Validate fills defaults and rejects inconsistent settings. Jamf
// credentials are checked separately by ValidateSource since not every
// command talks to Jamf.
func (c *Config) Validate() error {
	c.setDefaults()

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendSQLite:
	case CacheBackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownCacheBackend, c.Cache.Backend)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return errInvalidLogFormat
	}

	if *c.Jamf.MaxRetries < 0 {
		return fmt.Errorf("jamf.max_retries %w", errNegativeValue)
	}

	return nil
}

// ValidateSource checks that Jamf can be reached with the configured
// credentials.
func (c *Config) ValidateSource() error {
	if c.Jamf.URL == "" {
		return errMissingJamfURL
	}

	if c.Jamf.ClientID == "" || c.Jamf.ClientSecret == "" {
		return errMissingJamfCreds
	}

	return nil
}

// EvaluationDefaults returns the settings seeded into an empty store.
func (c *Config) EvaluationDefaults() models.EvaluationSettings {
	monitored := c.Defaults.MonitoredGroups
	if monitored == nil {
		monitored = []string{}
	}

	return models.EvaluationSettings{
		Thresholds: models.Thresholds{
			CheckInHours:        c.Defaults.CheckInHours,
			ReconHours:          c.Defaults.ReconHours,
			PendingCommandHours: c.Defaults.PendingCommandHours,
		},
		Groups: models.GroupSettings{
			ComplianceGroup: c.Defaults.ComplianceGroup,
			MonitoredGroups: monitored,
		},
	}
}

func (c *Config) setDefaults() {
	setString(&c.ListenAddr, defaultListenAddr)
	setString(&c.DBPath, defaultDBPath)
	setDuration(&c.ShutdownTimeout, defaultShutdownTimeout)

	setString(&c.Logging.Level, defaultLogLevel)
	setString(&c.Logging.Format, defaultLogFormat)
	c.Logging.Format = strings.ToLower(c.Logging.Format)

	setDuration(&c.Jamf.Timeout, defaultJamfTimeout)

	if c.Jamf.RequestsPerSecond <= 0 {
		c.Jamf.RequestsPerSecond = defaultRequestsPerSecond
	}

	setInt(&c.Jamf.Burst, defaultBurst)

	if c.Jamf.MaxRetries == nil {
		retries := defaultMaxRetries
		c.Jamf.MaxRetries = &retries
	}

	setDuration(&c.Jamf.RetryDelay, defaultRetryDelay)
	setDuration(&c.Jamf.MaxRetryDelay, defaultMaxRetryDelay)
	setInt(&c.Jamf.PageSize, defaultPageSize)

	setString(&c.Cache.Backend, CacheBackendSQLite)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	setDuration(&c.Cache.TTL, defaultCacheTTL)
	setDuration(&c.Cache.ReapInterval, defaultReapInterval)
	setDuration(&c.Cache.Retention, defaultRetention)
	setString(&c.Cache.Redis.KeyPrefix, defaultRedisKeyPrefix)

	setInt(&c.Monitor.MaxConcurrency, defaultMaxConcurrency)
	setDuration(&c.Monitor.DeviceTimeout, defaultDeviceTimeout)

	setInt(&c.Defaults.CheckInHours, models.DefaultCheckInHours)
	setInt(&c.Defaults.ReconHours, models.DefaultReconHours)
	setInt(&c.Defaults.PendingCommandHours, models.DefaultPendingCommandHours)
	setString(&c.Defaults.ComplianceGroup, models.DefaultComplianceGroup)
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}

func setDuration(dst *Duration, def time.Duration) {
	if *dst <= 0 {
		*dst = Duration(def)
	}
}
