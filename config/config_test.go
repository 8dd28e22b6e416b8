package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const sampleConfig = `
log_level: debug
http:
  addr: ":9000"
  allowed_origins: ["https://app.example"]
  rate_limit: 20
auth:
  jwt_secret: file-secret
  token_ttl: 1h
factory:
  owner: "0x0000000000000000000000000000000000000a11"
  treasury: "0x0000000000000000000000000000000000007ea5"
  fee: "0.0002"
  referral_percent: 10
  min_withdrawal: "0.01"
genesis:
  - address: "0x000000000000000000000000000000000000a11c"
    balance: "2.5"
chain:
  start_block: 100
  poll_interval: 5s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.HTTPAddr != ":9000" || cfg.RateLimit != 20 {
		t.Fatalf("http settings = %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.JWTSecret != "file-secret" || cfg.TokenTTL != time.Hour {
		t.Fatalf("auth = %s %s", cfg.JWTSecret, cfg.TokenTTL)
	}
	if cfg.Fee.String() != "200000000000000" || cfg.MinWithdrawal.String() != "10000000000000000" {
		t.Fatalf("amounts = %s %s", cfg.Fee, cfg.MinWithdrawal)
	}
	if cfg.ReferralPercent != 10 {
		t.Fatalf("percent = %d", cfg.ReferralPercent)
	}
	owner := common.HexToAddress("0x0000000000000000000000000000000000000a11")
	if cfg.Owner != owner || cfg.Treasury != common.HexToAddress("0x0000000000000000000000000000000000007ea5") {
		t.Fatalf("owner/treasury = %s/%s", cfg.Owner.Hex(), cfg.Treasury.Hex())
	}
	if cfg.FactoryAddress != crypto.CreateAddress(owner, 0) {
		t.Fatalf("factory address = %s", cfg.FactoryAddress.Hex())
	}
	holder := common.HexToAddress("0x000000000000000000000000000000000000a11c")
	if got := cfg.Genesis[holder]; got == nil || got.String() != "2500000000000000000" {
		t.Fatalf("genesis = %v", cfg.Genesis)
	}
	if cfg.ChainStartBlock != 100 || cfg.ChainPollInterval != 5*time.Second || cfg.ChainKey != nil {
		t.Fatalf("chain = %+v", cfg)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("FACTORY_FEE", "0.0001")
	t.Setenv("REFERRAL_PERCENT", "5")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "env-secret" || cfg.HTTPAddr != ":7000" || cfg.ReferralPercent != 5 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Fee.String() != "100000000000000" {
		t.Fatalf("fee = %s", cfg.Fee)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
}

func TestDefaultsWithoutFile(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("FACTORY_OWNER", "0x0000000000000000000000000000000000000a11")
	t.Setenv("CHAIN_PRIVATE_KEY", "0x"+common.Bytes2Hex(crypto.FromECDSA(key)))

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fee.String() != "100000000000000" || cfg.ReferralPercent != 5 || cfg.MinWithdrawal.String() != "1000000000000000" {
		t.Fatalf("economic defaults = %s %d %s", cfg.Fee, cfg.ReferralPercent, cfg.MinWithdrawal)
	}
	if cfg.Treasury != cfg.Owner {
		t.Fatal("treasury does not default to the owner")
	}
	if cfg.FactoryAddress != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatal("factory address does not default to the hot wallet")
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{name: "missing secret", env: map[string]string{"FACTORY_OWNER": "0x0000000000000000000000000000000000000a11"}},
		{name: "missing owner", env: map[string]string{"JWT_SECRET": "s"}},
		{name: "bad owner", env: map[string]string{"JWT_SECRET": "s", "FACTORY_OWNER": "owner"}, want: model.ErrInvalidAddress},
		{name: "percent too high", env: map[string]string{
			"JWT_SECRET": "s", "FACTORY_OWNER": "0x0000000000000000000000000000000000000a11", "REFERRAL_PERCENT": "51",
		}, want: model.ErrReferralPercentTooHigh},
		{name: "negative fee", env: map[string]string{
			"JWT_SECRET": "s", "FACTORY_OWNER": "0x0000000000000000000000000000000000000a11", "FACTORY_FEE": "-0.1",
		}, want: model.ErrInvalidAmount},
		{name: "bad ttl", env: map[string]string{
			"JWT_SECRET": "s", "FACTORY_OWNER": "0x0000000000000000000000000000000000000a11", "TOKEN_TTL": "soon",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
