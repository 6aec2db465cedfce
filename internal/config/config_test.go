package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr())
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("unexpected driver: %s", cfg.Database.Driver)
	}
	if cfg.Cart.CacheTTL() != 5*time.Minute {
		t.Fatalf("unexpected cart cache ttl: %v", cfg.Cart.CacheTTL())
	}
	if cfg.Cart.MaxLineQuantity != 99 {
		t.Fatalf("unexpected max line quantity: %d", cfg.Cart.MaxLineQuantity)
	}
	if cfg.Queue.Queues["critical"] != 10 {
		t.Fatalf("unexpected queue weights: %+v", cfg.Queue.Queues)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("server:\n  port: \"9090\"\ndatabase:\n  driver: postgres\n  dsn: host=db user=app\ncart:\n  max_line_quantity: 5\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	t.Setenv("SERVER_MODE", "release")

	cfg, err := LoadFrom(viper.New(), dir)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.Mode != "release" {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "host=db user=app" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Cart.MaxLineQuantity != 5 {
		t.Fatalf("unexpected max line quantity: %d", cfg.Cart.MaxLineQuantity)
	}
}

func TestValidateRejectsSharedJWTSecret(t *testing.T) {
	cfg := &Config{
		Database:    DatabaseConfig{DSN: "file::memory:"},
		JWT:         JWTConfig{SecretKey: "same"},
		CustomerJWT: JWTConfig{SecretKey: "same"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected shared secret to be rejected")
	}
}
