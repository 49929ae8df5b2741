package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// SessionFileName is the fixed name the client persists its token under.
const SessionFileName = "authToken"

type ClientConfig struct {
	BaseURL     string
	SessionFile string
	Timeout     time.Duration
	LogLevel    string
}

func LoadClient() (*ClientConfig, error) {
	v := newViper("client", "REVIEWHUB_CLIENT")
	setClientDefaults(v)

	var cfg ClientConfig
	if err := read(v, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("baseurl", "http://localhost:8080/api")
	v.SetDefault("sessionfile", defaultSessionFile())
	v.SetDefault("timeout", "10s")
	v.SetDefault("loglevel", "warn")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "reviewhub", SessionFileName)
}
