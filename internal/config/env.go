package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig configures the standalone websocket host.
type ServerConfig struct {
	Addr           string
	GameConfigPath string
	SendBuffer     int
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	RoomIdleTTL    time.Duration // rooms nobody joins are deleted after this
	AllowedOrigin  string
	Debug          bool
}

// LoadEnv reads the given .env files (".env" when none are named) into the process
// environment. Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ServerConfigFromEnv reads TYPERACE_* variables.
func ServerConfigFromEnv() (ServerConfig, error) {
	c := ServerConfig{
		Addr:           envOr("TYPERACE_ADDR", ":8080"),
		GameConfigPath: os.Getenv("TYPERACE_GAME_CONFIG"),
		AllowedOrigin:  os.Getenv("TYPERACE_ALLOWED_ORIGIN"),
		Debug:          os.Getenv("TYPERACE_DEBUG") != "",
	}

	var err error
	if c.SendBuffer, err = envInt("TYPERACE_SEND_BUFFER", 64); err != nil {
		return c, err
	}
	if c.WriteTimeout, err = envDuration("TYPERACE_WRITE_TIMEOUT", 5*time.Second); err != nil {
		return c, err
	}
	if c.PongTimeout, err = envDuration("TYPERACE_PONG_TIMEOUT", 60*time.Second); err != nil {
		return c, err
	}
	if c.RoomIdleTTL, err = envDuration("TYPERACE_ROOM_IDLE_TTL", 5*time.Minute); err != nil {
		return c, err
	}
	return c, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: want a positive integer, got %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: want a positive duration, got %q", key, v)
	}
	return d, nil
}
