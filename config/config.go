package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

// Config is the resolved runtime configuration: defaults, then the YAML file, then the
// environment.
type Config struct {
	LogLevel string

	HTTPAddr       string
	AllowedOrigins []string
	RateLimit      uint

	JWTSecret string
	TokenTTL  time.Duration

	FactoryAddress  common.Address
	Owner           common.Address
	Treasury        common.Address
	Fee             *big.Int
	ReferralPercent uint8
	MinWithdrawal   *big.Int
	Genesis         map[common.Address]*big.Int

	ChainURL          string
	ChainKey          *ecdsa.PrivateKey
	ChainStartBlock   uint64
	ChainPollInterval time.Duration
}

type configFile struct {
	LogLevel string `yaml:"log_level"`
	HTTP     struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		RateLimit      uint     `yaml:"rate_limit"`
	} `yaml:"http"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Factory struct {
		Address         string `yaml:"address"`
		Owner           string `yaml:"owner"`
		Treasury        string `yaml:"treasury"`
		Fee             string `yaml:"fee"`
		ReferralPercent *uint8 `yaml:"referral_percent"`
		MinWithdrawal   string `yaml:"min_withdrawal"`
	} `yaml:"factory"`
	Genesis []struct {
		Address string `yaml:"address"`
		Balance string `yaml:"balance"`
	} `yaml:"genesis"`
	Chain struct {
		URL          string `yaml:"url"`
		PrivateKey   string `yaml:"private_key"`
		StartBlock   uint64 `yaml:"start_block"`
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"chain"`
}

// raw holds values before amounts, addresses and keys are parsed.
type raw struct {
	logLevel        string
	httpAddr        string
	allowedOrigins  []string
	rateLimit       uint
	jwtSecret       string
	tokenTTL        string
	factoryAddress  string
	owner           string
	treasury        string
	fee             string
	referralPercent uint8
	minWithdrawal   string
	genesis         map[string]string
	chainURL        string
	chainKey        string
	chainStartBlock uint64
	pollInterval    string
}

// Load reads path (missing files are fine) and a .env in the working directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("load .env: %v", err)
	}

	r := raw{
		logLevel:        "info",
		httpAddr:        ":8080",
		allowedOrigins:  []string{"*"},
		rateLimit:       100,
		tokenTTL:        "24h",
		fee:             "0.0001",
		referralPercent: 5,
		minWithdrawal:   "0.001",
		genesis:         make(map[string]string),
		pollInterval:    "3s",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := r.apply(data); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
			logrus.Infof("config file %s not found, using defaults", path)
		default:
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := r.applyEnv(); err != nil {
		return nil, err
	}
	return r.resolve()
}

func (r *raw) apply(data []byte) error {
	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	setString(&r.logLevel, f.LogLevel)
	setString(&r.httpAddr, f.HTTP.Addr)
	if len(f.HTTP.AllowedOrigins) > 0 {
		r.allowedOrigins = f.HTTP.AllowedOrigins
	}
	if f.HTTP.RateLimit > 0 {
		r.rateLimit = f.HTTP.RateLimit
	}
	setString(&r.jwtSecret, f.Auth.JWTSecret)
	setString(&r.tokenTTL, f.Auth.TokenTTL)
	setString(&r.factoryAddress, f.Factory.Address)
	setString(&r.owner, f.Factory.Owner)
	setString(&r.treasury, f.Factory.Treasury)
	setString(&r.fee, f.Factory.Fee)
	if f.Factory.ReferralPercent != nil {
		r.referralPercent = *f.Factory.ReferralPercent
	}
	setString(&r.minWithdrawal, f.Factory.MinWithdrawal)
	for _, g := range f.Genesis {
		r.genesis[g.Address] = g.Balance
	}
	setString(&r.chainURL, f.Chain.URL)
	setString(&r.chainKey, f.Chain.PrivateKey)
	if f.Chain.StartBlock > 0 {
		r.chainStartBlock = f.Chain.StartBlock
	}
	setString(&r.pollInterval, f.Chain.PollInterval)
	return nil
}

func (r *raw) applyEnv() error {
	r.logLevel = envOrDefault("LOG_LEVEL", r.logLevel)
	r.httpAddr = envOrDefault("HTTP_ADDR", r.httpAddr)
	r.allowedOrigins = envCSV("CORS_ALLOWED_ORIGINS", r.allowedOrigins)
	r.jwtSecret = envOrDefault("JWT_SECRET", r.jwtSecret)
	r.tokenTTL = envOrDefault("TOKEN_TTL", r.tokenTTL)
	r.factoryAddress = envOrDefault("FACTORY_ADDRESS", r.factoryAddress)
	r.owner = envOrDefault("FACTORY_OWNER", r.owner)
	r.treasury = envOrDefault("TREASURY_ADDRESS", r.treasury)
	r.fee = envOrDefault("FACTORY_FEE", r.fee)
	r.minWithdrawal = envOrDefault("MIN_WITHDRAWAL", r.minWithdrawal)
	r.chainURL = envOrDefault("CHAIN_URL", r.chainURL)
	r.chainKey = envOrDefault("CHAIN_PRIVATE_KEY", r.chainKey)
	r.pollInterval = envOrDefault("CHAIN_POLL_INTERVAL", r.pollInterval)

	var err error
	if r.rateLimit, err = envUint("RATE_LIMIT", r.rateLimit, 32); err != nil {
		return err
	}
	if r.chainStartBlock, err = envUint64("CHAIN_START_BLOCK", r.chainStartBlock); err != nil {
		return err
	}
	percent, err := envUint("REFERRAL_PERCENT", uint(r.referralPercent), 8)
	if err != nil {
		return err
	}
	r.referralPercent = uint8(percent)
	return nil
}

func (r *raw) resolve() (*Config, error) {
	cfg := &Config{
		LogLevel:        r.logLevel,
		HTTPAddr:        r.httpAddr,
		AllowedOrigins:  r.allowedOrigins,
		RateLimit:       r.rateLimit,
		JWTSecret:       r.jwtSecret,
		ReferralPercent: r.referralPercent,
		Genesis:         make(map[common.Address]*big.Int),
		ChainURL:        r.chainURL,
		ChainStartBlock: r.chainStartBlock,
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(r.tokenTTL); err != nil {
		return nil, fmt.Errorf("auth token ttl: %w", err)
	}
	if cfg.ChainPollInterval, err = time.ParseDuration(r.pollInterval); err != nil {
		return nil, fmt.Errorf("chain poll interval: %w", err)
	}
	if cfg.Fee, err = model.ParseEther(r.fee); err != nil {
		return nil, fmt.Errorf("factory fee: %w", err)
	}
	if cfg.MinWithdrawal, err = model.ParseEther(r.minWithdrawal); err != nil {
		return nil, fmt.Errorf("min withdrawal: %w", err)
	}
	if cfg.ReferralPercent > model.MaxReferralPercent {
		return nil, fmt.Errorf("referral percent %d: %w", cfg.ReferralPercent, model.ErrReferralPercentTooHigh)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("missing JWT_SECRET")
	}

	if cfg.Owner, err = parseAddress("factory owner", r.owner, true); err != nil {
		return nil, err
	}
	if cfg.Treasury, err = parseAddress("treasury", r.treasury, false); err != nil {
		return nil, err
	}
	if cfg.Treasury == (common.Address{}) {
		cfg.Treasury = cfg.Owner
	}

	if r.chainKey != "" {
		if cfg.ChainKey, err = crypto.HexToECDSA(strings.TrimPrefix(r.chainKey, "0x")); err != nil {
			return nil, fmt.Errorf("chain private key: %w", err)
		}
	}

	if cfg.FactoryAddress, err = parseAddress("factory address", r.factoryAddress, false); err != nil {
		return nil, err
	}
	if cfg.FactoryAddress == (common.Address{}) {
		if cfg.ChainKey != nil {
			cfg.FactoryAddress = crypto.PubkeyToAddress(cfg.ChainKey.PublicKey)
		} else {
			cfg.FactoryAddress = crypto.CreateAddress(cfg.Owner, 0)
		}
	}

	for addr, balance := range r.genesis {
		holder, err := parseAddress("genesis address", addr, true)
		if err != nil {
			return nil, err
		}
		amount, err := model.ParseEther(balance)
		if err != nil {
			return nil, fmt.Errorf("genesis balance of %s: %w", addr, err)
		}
		cfg.Genesis[holder] = amount
	}

	logrus.Infof("config loaded: http=%s, factory=%s, owner=%s, fee=%s, referral=%d%%, chain=%v",
		cfg.HTTPAddr, cfg.FactoryAddress.Hex(), cfg.Owner.Hex(), model.FormatEther(cfg.Fee), cfg.ReferralPercent, cfg.ChainURL != "")
	return cfg, nil
}

func parseAddress(field, value string, required bool) (common.Address, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			return common.Address{}, fmt.Errorf("missing %s", field)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s %q: %w", field, value, model.ErrInvalidAddress)
	}
	addr := common.HexToAddress(value)
	if required && addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s: %w", field, model.ErrInvalidAddress)
	}
	return addr, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envCSV(name string, fallback []string) []string {
	value := os.Getenv(name)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envUint(name string, fallback uint, bits int) (uint, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return uint(v), nil
}

func envUint64(name string, fallback uint64) (uint64, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}
