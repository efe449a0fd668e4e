package config

import (
	"fmt"

	"github.com/rpattn/cabletrack/internal/db"
	"github.com/spf13/viper"
)

// Server holds the HTTP listener configuration.
type Server struct {
	Addr           string
	AllowedOrigins []string
}

// DefaultServer returns the default listener configuration.
func DefaultServer() Server {
	return Server{
		Addr:           ":8080",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
}

// Load reads config.yaml from the given path, with environment overrides
// (DB_HOST, DB_PORT, ... and SERVER_ADDR) taking precedence over the file.
func Load(configPath string) (db.Config, Server, error) {
	cfg := db.DefaultConfig()
	srv := DefaultServer()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("DB")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr", "SERVER_ADDR")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("server.addr") {
		srv.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		srv.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	return cfg, srv, nil
}
