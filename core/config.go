package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	AppName  string
	Build    string

	// SecretKey seals the session cookie; it is unrelated to the remote API's
	// token signing key (the portal never verifies bearer tokens).
	SecretKey string

	RollbarToken string

	Server struct {
		Addr            string
		ShutdownTimeout time.Duration
	}

	API struct {
		BaseURL string
	}

	PollInterval time.Duration
	SessionTTL   time.Duration
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Ripoti")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w#86y2ub$7gep-dz&q0(h!x)#*c5(#yg4h^$cegm2emy")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("apiBaseUrl", "http://localhost:5000/api")
	conf.SetDefault("pollInterval", 5*time.Second)
	conf.SetDefault("sessionTtl", 12*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		PollInterval: conf.GetDuration("pollInterval"),
		SessionTTL:   conf.GetDuration("sessionTtl"),
	}
	c.Server.Addr = conf.GetString("serverAddr")
	c.Server.ShutdownTimeout = conf.GetDuration("serverShutdownTimeout")
	c.API.BaseURL = strings.TrimRight(conf.GetString("apiBaseUrl"), "/")
	return c
}
