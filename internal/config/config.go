package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full application configuration, assembled from defaults and
// environment overrides. No config files; the environment is the source of
// truth, with .env loaded separately in development.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Chat     ChatConfig
	Call     CallConfig
	Security SecurityConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Port        string
}

type ServerConfig struct {
	HTTP      HTTPConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
}

type HTTPConfig struct {
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	MaxMessageSize  int64
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

type DatabaseConfig struct {
	Mongo MongoConfig
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// ChatConfig carries the message limits. MaxImageBytes and the image-only
// rule are part of the observable attachment contract.
type ChatConfig struct {
	MaxContentRunes int
	MaxImageBytes   int64
}

// CallConfig carries call coordination settings. ConnectTimeout bounds how
// long a joining client shows the connecting indicator before the session is
// assumed connected.
type CallConfig struct {
	RoomPrefix     string
	ConnectTimeout time.Duration
}

type SecurityConfig struct {
	JWT JWTConfig
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// Load builds the configuration from environment variables.
func Load() *Config {
	return &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "eventbeta"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("PORT", "8080"),
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Host:         getEnv("HTTP_HOST", "0.0.0.0"),
				ReadTimeout:  getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
				WriteTimeout: getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
				IdleTimeout:  getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			},
			WebSocket: WebSocketConfig{
				ReadBufferSize:  getInt("WS_READ_BUFFER_SIZE", 1024),
				WriteBufferSize: getInt("WS_WRITE_BUFFER_SIZE", 1024),
				PingPeriod:      getDuration("WS_PING_PERIOD", 54*time.Second),
				PongWait:        getDuration("WS_PONG_WAIT", 60*time.Second),
				WriteWait:       getDuration("WS_WRITE_WAIT", 10*time.Second),
				MaxMessageSize:  getInt64("WS_MAX_MESSAGE_SIZE", 1024*1024),
			},
			CORS: CORSConfig{
				AllowedOrigins:   getSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
				AllowedMethods:   getSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
				AllowedHeaders:   getSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization"}),
				AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
			},
		},
		Database: DatabaseConfig{
			Mongo: MongoConfig{
				URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
				Database:       getEnv("MONGODB_DATABASE", "eventbeta"),
				ConnectTimeout: getDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
			},
		},
		Chat: ChatConfig{
			MaxContentRunes: getInt("CHAT_MAX_CONTENT_RUNES", 500),
			MaxImageBytes:   getInt64("CHAT_MAX_IMAGE_BYTES", 5*1024*1024),
		},
		Call: CallConfig{
			RoomPrefix:     getEnv("CALL_ROOM_PREFIX", "eventbeta"),
			ConnectTimeout: getDuration("CALL_CONNECT_TIMEOUT", 10*time.Second),
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Secret: getEnv("JWT_SECRET", "change-me-in-production"),
				TTL:    getDuration("JWT_TTL", 24*time.Hour),
			},
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getSlice(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
