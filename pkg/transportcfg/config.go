// Package transportcfg loads the YAML configuration that parameterizes
// pkg/transport: gateway lists, connection pool sizes, retry timeouts, and
// the build-identity fields used to compose the User-Agent header.
package transportcfg

import (
	"os"
	"path/filepath"

	"github.com/imdario/mergo"
	yaml "gopkg.in/yaml.v3"

	"github.com/vaultsync/core/pkg/logging"
)

// BuildInfo names the client build used to compose the User-Agent header
// as "<Product>/<Version>-<Build>-<Platform>".
type BuildInfo struct {
	Product  string `yaml:"product"`
	Version  string `yaml:"version"`
	Build    string `yaml:"build"`
	Platform string `yaml:"platform"`
}

// UserAgent returns the composed User-Agent header value.
func (b BuildInfo) UserAgent() string {
	return b.Product + "/" + b.Version + "-" + b.Build + "-" + b.Platform
}

// PoolConfig configures one of the transport's three named connection
// pools: bounded concurrency and a socket timeout.
type PoolConfig struct {
	MaxConnsPerHost int `yaml:"maxConnsPerHost"`
	SocketTimeout   int `yaml:"socketTimeoutSeconds"`
}

// Config is the full transportcfg document.
type Config struct {
	APIGateways      []string `yaml:"apiGateways"`
	UploadGateways   []string `yaml:"uploadGateways"`
	DownloadGateways []string `yaml:"downloadGateways"`

	API      PoolConfig `yaml:"api"`
	Upload   PoolConfig `yaml:"upload"`
	Download PoolConfig `yaml:"download"`

	MaxRetryAPIRequest int `yaml:"maxRetryAPIRequest"`
	MaxRetryUpload     int `yaml:"maxRetryUpload"`
	MaxRetryDownload   int `yaml:"maxRetryDownload"`

	RetryAPIRequestTimeoutSeconds int `yaml:"retryAPIRequestTimeoutSeconds"`
	RetryUploadTimeoutSeconds     int `yaml:"retryUploadTimeoutSeconds"`
	RetryDownloadTimeoutSeconds   int `yaml:"retryDownloadTimeoutSeconds"`

	Build BuildInfo `yaml:"build"`
}

// defaultConfig returns the baseline configuration used when no file is
// present or a loaded file is missing fields, mirroring the source's
// 500s-soft API / 3600s upload-socket / 86400s download-socket timeouts.
func defaultConfig() Config {
	return Config{
		APIGateways:      []string{"https://gateway.example.io"},
		UploadGateways:   []string{"https://ingest.example.io"},
		DownloadGateways: []string{"https://down.example.io"},
		API:              PoolConfig{MaxConnsPerHost: 32, SocketTimeout: 500},
		Upload:           PoolConfig{MaxConnsPerHost: 16, SocketTimeout: 3600},
		Download:         PoolConfig{MaxConnsPerHost: 16, SocketTimeout: 86400},
		MaxRetryAPIRequest:            5,
		MaxRetryUpload:                3,
		MaxRetryDownload:              5,
		RetryAPIRequestTimeoutSeconds: 1,
		RetryUploadTimeoutSeconds:     1,
		RetryDownloadTimeoutSeconds:   1,
		Build: BuildInfo{
			Product:  "vaultcore",
			Version:  "0.0.0",
			Build:    "dev",
			Platform: "linux",
		},
	}
}

// readConfigFile reads the configuration file at the given path.
func readConfigFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// parseConfig parses YAML configuration data into a Config struct.
func parseConfig(data []byte) (*Config, error) {
	config := &Config{}
	err := yaml.Unmarshal(data, config)
	return config, err
}

// mergeWithDefaults fills any zero-valued field of config from defaults.
func mergeWithDefaults(config *Config, defaults Config) error {
	return mergo.Merge(config, defaults)
}

// Load reads the configuration file at path, falling back to defaults
// when the file is absent or fails to parse, and merging defaults into
// any fields the file left unset.
func Load(path string) *Config {
	defaults := defaultConfig()

	data, err := readConfigFile(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Configuration file not found, using defaults.")
		return &defaults
	}

	config, err := parseConfig(data)
	if err != nil {
		logging.Error().Err(err).Str("path", path).Msg("Could not parse configuration file, using defaults.")
		return &defaults
	}

	if err := mergeWithDefaults(config, defaults); err != nil {
		logging.Error().Err(err).Str("path", path).Msg("Could not merge configuration file with defaults, using defaults only.")
		return &defaults
	}

	return config
}

// DefaultConfigPath returns the default config file location under the
// user's config directory.
func DefaultConfigPath() string {
	confDir, err := os.UserConfigDir()
	if err != nil {
		logging.Error().Err(err).Msg("Could not determine configuration directory.")
	}
	return filepath.Join(confDir, "vaultcore/config.yml")
}
