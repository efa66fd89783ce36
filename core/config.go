package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	ServerConfig struct {
		Address            string
		DebugAddress       string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	SeedConfig struct {
		AdminName     string
		AdminEmail    string
		AdminPassword string
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		CredentialsFile  string
		DefaultFromEmail mail.Address

		API    APIConfig
		Server ServerConfig
		Seed   SeedConfig
	}
)

// NewConfig loads the configuration of the current environment.
// ENV selects the environment (DEV by default) and is used as the prefix of every variable, ie: DEV_API_BASEURL.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "Academia")
	conf.SetDefault("secretKey", "u8#k2v!c9z&p0m4q7w*e1r5t6y3x@b-n")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("credentialsFile", defaultCredentialsFile())
	conf.SetDefault("defaultFromEmail", "Academia <noreply@localhost>")
	conf.SetDefault("api.baseURL", "https://api.bootcamp.tokoacademy.org/")
	conf.SetDefault("api.timeout", 30*time.Second)
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugAddress", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 24*time.Hour)
	conf.SetDefault("seed.adminName", "Academy Admin")
	conf.SetDefault("seed.adminEmail", "admin@localhost")
	conf.SetDefault("seed.adminPassword", "admin123")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	from, err := mail.ParseAddress(conf.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		CredentialsFile:  conf.GetString("credentialsFile"),
		DefaultFromEmail: *from,
		API: APIConfig{
			BaseURL: conf.GetString("api.baseURL"),
			Timeout: conf.GetDuration("api.timeout"),
		},
		Server: ServerConfig{
			Address:            conf.GetString("server.address"),
			DebugAddress:       conf.GetString("server.debugAddress"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Seed: SeedConfig{
			AdminName:     conf.GetString("seed.adminName"),
			AdminEmail:    conf.GetString("seed.adminEmail"),
			AdminPassword: conf.GetString("seed.adminPassword"),
		},
	}
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "academia", "credentials.yaml")
}
