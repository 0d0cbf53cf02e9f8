package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	Player     string
	PlayerFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("PADDLE_SERVER", "http://localhost:8080"),
		Player:     os.Getenv("PADDLE_PLAYER"),
		PlayerFile: getEnvOrDefault("PADDLE_PLAYER_FILE", defaultPlayerFile()),
		Output:     "text",
		Verbose:    false,
	}
}

// LoadPlayer loads the player name from file if not already set
func (c *Config) LoadPlayer() error {
	if c.Player != "" {
		return nil
	}

	data, err := os.ReadFile(c.PlayerFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No player file is fine
		}
		return err
	}

	c.Player = strings.TrimSpace(string(data))
	return nil
}

// SavePlayer saves the player name to the player file
func (c *Config) SavePlayer(name string) error {
	c.Player = name

	dir := filepath.Dir(c.PlayerFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.PlayerFile, []byte(name), 0600)
}

func defaultPlayerFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".paddle/player"
	}
	return filepath.Join(home, ".paddle", "player")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
