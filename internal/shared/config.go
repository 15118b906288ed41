package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultConfigFile is the config filename looked up in the working directory
// when neither the --config flag nor SIFT_CONFIG is set.
const DefaultConfigFile = "sift.toml"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Scan        ScanConfig        `toml:"scan"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Map returns the credentials in the form the services package consumes.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings, shared by the OAuth callback
// listener and the local stats API.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ScanConfig contains library scan tuning knobs.
type ScanConfig struct {
	Workers          int     `toml:"workers"`
	RateLimit        float64 `toml:"rate_limit"`
	PlaylistPageSize int     `toml:"playlist_page_size"`
	TrackPageSize    int     `toml:"track_page_size"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a sift.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveConfigPath returns the config path to load: the flag value when set,
// then $SIFT_CONFIG, then [DefaultConfigFile] in the working directory.
func ResolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("SIFT_CONFIG"); env != "" {
		return env
	}
	return DefaultConfigFile
}

// ApplyEnv overlays environment variables onto the config.
//
// A .env file in the working directory is loaded first when present (missing
// files are not an error), then SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET,
// SPOTIFY_REDIRECT_URI, SIFT_DB_PATH, and SIFT_SCAN_WORKERS override file
// values. Environment wins over the file; flags win over both.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v := os.Getenv("SIFT_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SIFT_SCAN_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			c.Scan.Workers = workers
		}
	}
}

// Validate checks that Spotify credentials are usable, naming every missing field.
func (c *Config) Validate() error {
	var missing []string

	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientID == "your_spotify_client_id" {
		missing = append(missing, "spotify.client_id")
	}
	if c.Credentials.Spotify.ClientSecret == "" || c.Credentials.Spotify.ClientSecret == "your_spotify_client_secret" {
		missing = append(missing, "spotify.client_secret")
	}
	if c.Credentials.Spotify.RedirectURI == "" {
		missing = append(missing, "spotify.redirect_uri")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	return nil
}
