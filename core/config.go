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

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type (
	Config struct {
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		Env          string
		SecretKey    string
		RollbarToken string
		Server       ServerConfig
		Auth         AuthConfig
		Upload       UploadConfig
		Store        StoreConfig
	}

	ServerConfig struct {
		Host                   string
		DebugHost              string
		ReadTimeout            time.Duration
		WriteTimeout           time.Duration
		ShutdownTimeout        time.Duration
		SessionExpirationDelta time.Duration
	}

	// AuthConfig holds the single credential pair allowed into the dashboard.
	AuthConfig struct {
		Username string
		Password string
	}

	UploadConfig struct {
		MaxSize int64 // bytes
	}

	StoreConfig struct {
		Engine        string // memory | redis
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}
)

// NewConfig reads the configuration from defaults, the `config/.env.<env>` file and the environment.
// Environment variables are prefixed by the current ENV, e.g. PROD_SERVER_HOST.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Rekodi")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "d8k1-yq#t)u2r$+0pz=wm&e9ls6(c!a)@*h7(#fx^v$bn3o4ig")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.sessionExpirationDelta", 12*time.Hour)
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "password123")
	v.SetDefault("upload.maxSize", int64(10<<20))
	v.SetDefault("store.engine", StoreMemory)
	v.SetDefault("store.redisAddr", "localhost:6379")
	v.SetDefault("store.redisPassword", "")
	v.SetDefault("store.redisDB", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		Env:          env,
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                   v.GetString("server.host"),
			DebugHost:              v.GetString("server.debugHost"),
			ReadTimeout:            v.GetDuration("server.readTimeout"),
			WriteTimeout:           v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:        v.GetDuration("server.shutdownTimeout"),
			SessionExpirationDelta: v.GetDuration("server.sessionExpirationDelta"),
		},
		Auth: AuthConfig{
			Username: v.GetString("auth.username"),
			Password: v.GetString("auth.password"),
		},
		Upload: UploadConfig{
			MaxSize: v.GetInt64("upload.maxSize"),
		},
		Store: StoreConfig{
			Engine:        strings.ToLower(v.GetString("store.engine")),
			RedisAddr:     v.GetString("store.redisAddr"),
			RedisPassword: v.GetString("store.redisPassword"),
			RedisDB:       v.GetInt("store.redisDB"),
		},
	}
}

// NewTestConfig returns the defaults used by tests, without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		Debug:     false,
		TestMode:  true,
		AppName:   "Rekodi",
		Build:     "test",
		Env:       "TEST",
		SecretKey: "test-secret-key",
		Server: ServerConfig{
			Host:                   ":0",
			ShutdownTimeout:        time.Second,
			SessionExpirationDelta: time.Hour,
		},
		Auth:   AuthConfig{Username: "admin", Password: "password123"},
		Upload: UploadConfig{MaxSize: 10 << 20},
		Store:  StoreConfig{Engine: StoreMemory},
	}
}
