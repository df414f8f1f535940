// Package config provides functionality for managing configuration options
// for the client and the server using command-line flags, an optional JSON
// config file, a .env file and environment variables.
//
// Precedence, lowest to highest: flag defaults, explicit flags, the JSON
// file, environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// CleanupInterval is how often soft-deleted rows are purged.
	CleanupInterval time.Duration `json:"cleanup_interval"`

	// Retention is how long soft-deleted rows are kept.
	Retention time.Duration `json:"retention"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey switch the listener to HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ClientOptions holds the configuration values for the client shell.
type ClientOptions struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api.
	BaseURL string `json:"base_url"`

	// CAFile optionally names a PEM bundle trusted for HTTPS.
	CAFile string `json:"ca_file"`

	// CachePath is the SQLite file of the local cache.
	CachePath string `json:"cache_path"`

	// SessionPath is the JSON file holding the persisted session.
	SessionPath string `json:"session_path"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `json:"timeout"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// LogFile receives the client's logs so they do not mix with the shell.
	LogFile string `json:"log_file"`

	// SyncInterval enables background refreshes when positive.
	SyncInterval time.Duration `json:"sync_interval"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// Parse parses the server flags from os.Args and applies the config file and
// environment overrides. It exits the process on invalid input, like
// flag.Parse does.
func Parse() *Options {
	_ = godotenv.Load()
	opts, err := ParseServer(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// ParseClient is Parse for the client binary.
func ParseClient() *ClientOptions {
	_ = godotenv.Load()
	opts, err := ParseClientArgs(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// ParseServer builds server Options from args and getenv.
func ParseServer(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.DurationVar(&options.CleanupInterval, "cleanup", time.Hour, "soft-delete cleaner interval")
	fs.DurationVar(&options.Retention, "retention", 30*24*time.Hour, "soft-deleted rows retention")
	fs.StringVar(&options.LogLevel, "log", "info", "log level")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "server certificate (PEM)")
	fs.StringVar(&options.TLSKey, "tls-key", "", "server private key (PEM)")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options.Config, options); err != nil {
		return nil, err
	}

	if cert := getenv("TLS_CERT"); cert != "" {
		options.TLSCert = cert
	}
	if key := getenv("TLS_KEY"); key != "" {
		options.TLSKey = key
	}
	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		options.LogLevel = lvl
	}
	if err := envDuration(getenv, "CLEANUP_INTERVAL", &options.CleanupInterval); err != nil {
		return nil, err
	}
	if err := envDuration(getenv, "RETENTION", &options.Retention); err != nil {
		return nil, err
	}

	return options, options.Validate()
}

// Validate checks the server options.
func (o *Options) Validate() error {
	var errs []error
	if o.Port == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if o.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("invalid cleanup interval %v", o.CleanupInterval))
	}
	if o.Retention < 0 {
		errs = append(errs, fmt.Errorf("invalid retention %v", o.Retention))
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		errs = append(errs, errors.New("tls-cert and tls-key must be set together"))
	}
	return errors.Join(errs...)
}

// TLS reports whether the server should listen with HTTPS.
func (o *Options) TLS() bool { return o.TLSCert != "" && o.TLSKey != "" }

// ParseClientArgs builds ClientOptions from args and getenv.
func ParseClientArgs(args []string, getenv func(string) string) (*ClientOptions, error) {
	options := &ClientOptions{}
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&options.BaseURL, "url", "http://localhost:8080/api", "server base URL")
	fs.StringVar(&options.CAFile, "ca", "", "path to CA cert for HTTPS")
	fs.StringVar(&options.CachePath, "cache", "ebudget.db", "path to local cache database")
	fs.StringVar(&options.SessionPath, "session", "session.json", "path to persisted session")
	fs.DurationVar(&options.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	fs.StringVar(&options.LogLevel, "log", "warn", "log level")
	fs.StringVar(&options.LogFile, "log-file", "stderr", "log destination")
	fs.DurationVar(&options.SyncInterval, "sync", 0, "background sync interval, 0 disables")
	fs.StringVar(&options.Config, "config", "client.json", "path to config file")
	fs.StringVar(&options.Config, "c", "client.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options.Config, options); err != nil {
		return nil, err
	}

	if u := getenv("EBUDGET_URL"); u != "" {
		options.BaseURL = u
	}
	if ca := getenv("EBUDGET_CA"); ca != "" {
		options.CAFile = ca
	}
	if p := getenv("EBUDGET_CACHE"); p != "" {
		options.CachePath = p
	}
	if p := getenv("EBUDGET_SESSION"); p != "" {
		options.SessionPath = p
	}
	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		options.LogLevel = lvl
	}
	if err := envDuration(getenv, "EBUDGET_TIMEOUT", &options.Timeout); err != nil {
		return nil, err
	}
	if err := envDuration(getenv, "EBUDGET_SYNC_INTERVAL", &options.SyncInterval); err != nil {
		return nil, err
	}

	return options, options.Validate()
}

// Validate checks the client options.
func (o *ClientOptions) Validate() error {
	var errs []error
	if o.BaseURL == "" {
		errs = append(errs, errors.New("base URL is empty"))
	}
	if o.CachePath == "" {
		errs = append(errs, errors.New("cache path is empty"))
	}
	if o.SessionPath == "" {
		errs = append(errs, errors.New("session path is empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid timeout %v", o.Timeout))
	}
	if o.SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("invalid sync interval %v", o.SyncInterval))
	}
	return errors.Join(errs...)
}

// loadFile overlays the JSON file at path onto dst. A missing file is not an
// error.
func loadFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func envDuration(getenv func(string) string, key string, dst *time.Duration) error {
	v := getenv(key)
	if v == "" {
		return nil
	}
	d, err := parseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q", key, v)
	}
	*dst = d
	return nil
}

// parseDuration accepts time.ParseDuration syntax ("90s", "1h") or a bare
// number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// duration decodes a JSON string or number with parseDuration.
type duration time.Duration

func (d *duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	var (
		parsed time.Duration
		err    error
	)
	switch v := v.(type) {
	case string:
		parsed, err = parseDuration(v)
	case float64:
		parsed, err = parseDuration(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		err = fmt.Errorf("not a duration: %s", b)
	}
	if err != nil {
		return fmt.Errorf("invalid duration %s: %w", b, err)
	}
	*d = duration(parsed)
	return nil
}

// UnmarshalJSON reads durations as "1h30m" or as seconds.
func (o *Options) UnmarshalJSON(b []byte) error {
	type plain Options
	aux := struct {
		*plain
		CleanupInterval *duration `json:"cleanup_interval"`
		Retention       *duration `json:"retention"`
	}{
		plain:           (*plain)(o),
		CleanupInterval: (*duration)(&o.CleanupInterval),
		Retention:       (*duration)(&o.Retention),
	}
	return json.Unmarshal(b, &aux)
}

// UnmarshalJSON reads durations as "10s" or as seconds.
func (o *ClientOptions) UnmarshalJSON(b []byte) error {
	type plain ClientOptions
	aux := struct {
		*plain
		Timeout      *duration `json:"timeout"`
		SyncInterval *duration `json:"sync_interval"`
	}{
		plain:        (*plain)(o),
		Timeout:      (*duration)(&o.Timeout),
		SyncInterval: (*duration)(&o.SyncInterval),
	}
	return json.Unmarshal(b, &aux)
}
