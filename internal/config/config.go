// Package config handles configuration loading for the aeat-sender CLI.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows the certificate
// passphrase to be injected at runtime instead of living on disk. YAML is a
// superset of JSON, so a plain JSON configuration file loads unchanged.
//
// # Configuration Sections
//
//   - certificate: PKCS#12 bundle path and passphrase
//   - environments: per-system service URLs (cells omitted here fall back
//     to the published AEAT endpoints)
//   - timeouts: connection and read timeouts
//   - retry: connection retry policy
//   - logging: level and optional rotating file sink
//   - output: directory where response files are written
//
// # Example Configuration
//
//	certificate:
//	  path: /etc/aeat/sello.p12
//	  passphrase: ${AEAT_CERT_PASSWORD}
//
//	environments:
//	  sii:
//	    testing:
//	      url: https://prewww1.aeat.es/wlpl/SSII-FACT/ws/fe/SiiFactFEV1SOAP
//
//	timeouts:
//	  connect: 10s
//	  read: 60s
//
// Timeout values accept Go duration strings ("10s", "1m30s") or bare
// integers, read as seconds for compatibility with older configuration
// files.
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/aeat"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/credential"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/transport"
)

// Config is the root configuration structure
type Config struct {
	Certificate  CertificateConfig  `yaml:"certificate"`
	Environments EnvironmentsConfig `yaml:"environments"`
	Timeouts     TimeoutsConfig     `yaml:"timeouts"`
	Retry        RetryConfig        `yaml:"retry"`
	Logging      LoggingConfig      `yaml:"logging"`
	Output       OutputConfig       `yaml:"output"`
}

// CertificateConfig holds the PKCS#12 bundle settings
type CertificateConfig struct {
	Path string `yaml:"path" validate:"required"`

	// Passphrase may reference an environment variable in the file
	// (passphrase: ${AEAT_CERT_PASSWORD}); it is expanded at load time and
	// never logged.
	Passphrase string `yaml:"passphrase"`
}

// EnvironmentsConfig holds per-system endpoint overrides
type EnvironmentsConfig struct {
	SII       SystemEndpoints `yaml:"sii"`
	Verifactu SystemEndpoints `yaml:"verifactu"`
}

// SystemEndpoints holds the endpoint cells of one system
type SystemEndpoints struct {
	Testing    EndpointConfig `yaml:"testing"`
	Production EndpointConfig `yaml:"production"`
}

// EndpointConfig overrides one endpoint cell. Empty fields keep the
// published AEAT value for that cell.
type EndpointConfig struct {
	URL        string `yaml:"url" validate:"omitempty,url"`
	Namespace  string `yaml:"namespace"`
	SOAPAction string `yaml:"soapAction"`
}

// TimeoutsConfig holds connection timing settings
type TimeoutsConfig struct {
	Connect string `yaml:"connect" validate:"omitempty,duration"`
	Read    string `yaml:"read" validate:"omitempty,duration"`
}

// RetryConfig holds the connection retry policy
type RetryConfig struct {
	MaxAttempts int    `yaml:"maxAttempts" validate:"omitempty,gte=1,lte=10"`
	Backoff     string `yaml:"backoff" validate:"omitempty,duration"`
}

// LoggingConfig holds logging settings. An empty File disables the rotating
// file sink.
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"omitempty,gte=1"`
	MaxBackups int    `yaml:"maxBackups" validate:"omitempty,gte=0"`
}

// OutputConfig holds response file settings
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// Load reads configuration from a YAML or JSON file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	// Apply defaults
	cfg.applyDefaults()

	// Validate
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timeouts.Connect == "" {
		c.Timeouts.Connect = "10s"
	}
	if c.Timeouts.Read == "" {
		c.Timeouts.Read = "60s"
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Backoff == "" {
		c.Retry.Backoff = "500ms"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "responses"
	}
}

func (c *Config) validate() error {
	return newValidator().Validate(c)
}

// Bundle returns the credential source described by the certificate section.
func (c *Config) Bundle() credential.Bundle {
	return credential.Bundle{
		Path:       c.Certificate.Path,
		Passphrase: c.Certificate.Passphrase,
	}
}

// Resolver builds the endpoint table: the published AEAT endpoints with the
// file's non-empty cells merged on top.
func (c *Config) Resolver() *aeat.StaticEndpointResolver {
	r := aeat.DefaultEndpoints()

	merge := func(system aeat.System, environment aeat.Environment, ec EndpointConfig) {
		if ec.URL == "" && ec.Namespace == "" && ec.SOAPAction == "" {
			return
		}
		ep := aeat.Endpoint{}
		if known, err := r.ResolveEndpoint(system, environment); err == nil {
			ep = *known
		}
		if ec.URL != "" {
			ep.URL = ec.URL
		}
		if ec.Namespace != "" {
			ep.Namespace = ec.Namespace
		}
		if ec.SOAPAction != "" {
			ep.SOAPAction = ec.SOAPAction
		}
		r.Register(system, environment, &ep)
	}

	merge(aeat.SystemSII, aeat.EnvironmentTesting, c.Environments.SII.Testing)
	merge(aeat.SystemSII, aeat.EnvironmentProduction, c.Environments.SII.Production)
	merge(aeat.SystemVerifactu, aeat.EnvironmentTesting, c.Environments.Verifactu.Testing)
	merge(aeat.SystemVerifactu, aeat.EnvironmentProduction, c.Environments.Verifactu.Production)

	return r
}

// TransportOptions maps the timeouts and retry sections onto transport
// options, leaving everything else at its default.
func (c *Config) TransportOptions() transport.Options {
	opts := transport.DefaultOptions()

	if d, err := parseDuration(c.Timeouts.Connect); err == nil {
		opts.ConnectTimeout = d
	}
	if d, err := parseDuration(c.Timeouts.Read); err == nil {
		opts.ReadTimeout = d
	}
	if c.Retry.MaxAttempts > 0 {
		opts.MaxAttempts = c.Retry.MaxAttempts
	}
	if d, err := parseDuration(c.Retry.Backoff); err == nil {
		opts.RetryBackoff = d
	}

	return opts
}

// parseDuration accepts Go duration strings ("90s", "1m30s") and bare
// integers, which are read as seconds the way older config files wrote
// them.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}
