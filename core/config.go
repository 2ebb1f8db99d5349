package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryDelay     time.Duration
}

type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	AppName  string
	Build    string

	SessionFile  string
	RollbarToken string

	API APIConfig
}

// LoadConfig assembles the application configuration from defaults,
// an optional config/.env.<env> file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("apiBaseURL", "http://localhost:8080")
	v.SetDefault("apiRequestTimeout", 30*time.Second)
	v.SetDefault("apiRetryDelay", 500*time.Millisecond)
	v.SetDefault("sessionFile", defaultSessionFile())

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case strings.ToUpper("TEST"):
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if err != nil && !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SessionFile:  v.GetString("sessionFile"),
		RollbarToken: v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL:        v.GetString("apiBaseURL"),
			RequestTimeout: v.GetDuration("apiRequestTimeout"),
			RetryDelay:     v.GetDuration("apiRetryDelay"),
		},
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (conf *Config) Validate() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.AppName, "appName"),
		vala.StringNotEmpty(conf.API.BaseURL, "apiBaseURL"),
		vala.StringNotEmpty(conf.SessionFile, "sessionFile"),
		vala.GreaterThan(int(conf.API.RequestTimeout), 0, "apiRequestTimeout"),
		vala.GreaterThan(int(conf.API.RetryDelay), 0, "apiRetryDelay"),
	).Check()
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".darasa", "session.json")
}
