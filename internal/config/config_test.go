package config

import "testing"

func TestLoadExigeJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Error("Load sem JWT_SECRET deveria falhar")
	}
}

func TestLoadPoolDeConexoes(t *testing.T) {
	t.Setenv("JWT_SECRET", "segredo-de-teste")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.MaxOpenConns != 25 || cfg.DB.MaxIdleConns != 5 {
		t.Errorf("defaults do pool: open=%d idle=%d", cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	}

	t.Setenv("DB_MAX_OPEN_CONNS", "42")
	t.Setenv("DB_MAX_IDLE_CONNS", "7")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.MaxOpenConns != 42 || cfg.DB.MaxIdleConns != 7 {
		t.Errorf("pool do ambiente: open=%d idle=%d", cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	}
}
