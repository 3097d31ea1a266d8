// Package config - Application settings via config file and environment.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Settings holds every runtime knob of the application.
type Settings struct {
	Server  ServerSettings  `mapstructure:"server"`
	Storage StorageSettings `mapstructure:"storage"`
	Models  ModelSettings   `mapstructure:"models"`
}

// ServerSettings configures the HTTP listener and session cookies.
type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// SessionSecret signs the session cookies. Override it in production.
	SessionSecret string `mapstructure:"sessionsecret"`
}

// StorageSettings configures the flat-file stores.
type StorageSettings struct {
	UsersFile   string `mapstructure:"usersfile"`
	HistoryFile string `mapstructure:"historyfile"`
	ScansDir    string `mapstructure:"scansdir"`
}

// ModelSettings points at the ONNX model files. An empty path disables that
// model.
type ModelSettings struct {
	Fruit      string `mapstructure:"fruit"`
	Leaf       string `mapstructure:"leaf"`
	Gatekeeper string `mapstructure:"gatekeeper"`
}

// Load reads settings from config.yaml (working directory) and the
// environment. Environment variables use the TOMATO_ prefix with underscores,
// e.g. TOMATO_SERVER_PORT. A missing config file is not an error; defaults
// apply.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TOMATO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.sessionsecret", "tomato-ai-dev-secret")
	v.SetDefault("storage.usersfile", "data/users.json")
	v.SetDefault("storage.historyfile", "data/scan_history.json")
	v.SetDefault("storage.scansdir", "data/scans")
	v.SetDefault("models.fruit", "models/fruit_expert.onnx")
	v.SetDefault("models.leaf", "models/leaf_expert.onnx")
	v.SetDefault("models.gatekeeper", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, errors.Wrap(err, "failed to parse settings")
	}
	return &settings, nil
}
