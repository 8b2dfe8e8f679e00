package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Addr            string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		AllowOrigins    []string
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only
	}

	GradingConfig struct {
		DefaultTargetGrade    float64
		DefaultPredictionMode string
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
		Grading  GradingConfig
	}
)

// Address returns the "host:port" of the database server.
func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// IsSQLite reports whether the embedded database engine is configured.
func (dbc DatabaseConfig) IsSQLite() bool {
	return dbc.Engine == "sqlite"
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "SmartGrades")
	conf.SetDefault("build", "2.0.0")
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("serverDisableReqLogs", false)
	conf.SetDefault("serverAllowOrigins", []string{"*"})

	conf.SetDefault("databaseEngine", "sqlite")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseName", "smartgrades")
	conf.SetDefault("databaseUser", "")
	conf.SetDefault("databasePassword", "")
	conf.SetDefault("databaseAdminUser", "postgres")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseDisableTLS", true)
	conf.SetDefault("databasePath", "smartgrades.db")

	conf.SetDefault("gradingDefaultTargetGrade", 70.0)
	conf.SetDefault("gradingDefaultPredictionMode", "ensemble")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
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

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Addr:            conf.GetString("serverAddr"),
			Host:            conf.GetString("serverHost"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:  conf.GetBool("serverDisableReqLogs"),
			AllowOrigins:    conf.GetStringSlice("serverAllowOrigins"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(conf.GetString("databaseEngine")),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetString("databasePort"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			DisableTLS:    conf.GetBool("databaseDisableTLS"),
			Path:          conf.GetString("databasePath"),
		},
		Grading: GradingConfig{
			DefaultTargetGrade:    conf.GetFloat64("gradingDefaultTargetGrade"),
			DefaultPredictionMode: conf.GetString("gradingDefaultPredictionMode"),
		},
	}
}
