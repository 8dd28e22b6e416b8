package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"launchpad-token-factory/api"
	"launchpad-token-factory/chain"
	"launchpad-token-factory/config"
	"launchpad-token-factory/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "launchpad",
		Short:         "token factory with a referral ledger",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the YAML config file")
	rootCmd.AddCommand(serveCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(level)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and, when a chain is configured, the deposit watcher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func tokenCmd() *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "issue an API access token for an address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !common.IsHexAddress(address) {
				return fmt.Errorf("--address %q is not an address", address)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := api.IssueToken([]byte(cfg.JWTSecret), common.HexToAddress(address), cfg.TokenTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "caller address the token acts for")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	ledger := core.NewMemoryVault(cfg.FactoryAddress)
	for addr, balance := range cfg.Genesis {
		if err := ledger.Deposit(addr, balance); err != nil {
			return fmt.Errorf("genesis balance of %s: %w", addr.Hex(), err)
		}
	}

	var wg sync.WaitGroup
	var vault core.Vault = ledger
	if cfg.ChainURL != "" {
		bc, err := chain.NewBlockchainClient(cfg.ChainURL, cfg.ChainKey)
		if err != nil {
			return fmt.Errorf("dial chain: %w", err)
		}
		if cfg.ChainKey == nil {
			logrus.Warn("chain configured without a private key, payouts stay in process")
		} else {
			vault = chain.NewVault(ledger, bc)

			startAfter := cfg.ChainStartBlock
			if startAfter == 0 {
				if startAfter, err = bc.GetLatestBlockNumber(ctx); err != nil {
					return fmt.Errorf("GetLatestBlockNumber: %w", err)
				}
			}
			watcher := chain.NewWatcher(bc, ledger, bc.Address(), startAfter, cfg.ChainPollInterval)
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = watcher.Run(ctx)
			}()
		}
	}

	factory, err := core.NewFactory(core.Config{
		Address:         cfg.FactoryAddress,
		Owner:           cfg.Owner,
		Treasury:        cfg.Treasury,
		Fee:             cfg.Fee,
		ReferralPercent: cfg.ReferralPercent,
		MinWithdrawal:   cfg.MinWithdrawal,
	}, core.Options{Vault: vault})
	if err != nil {
		return err
	}

	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(factory, api.Options{
			JWTSecret:      []byte(cfg.JWTSecret),
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimit:      cfg.RateLimit,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("http shutdown: %v", err)
	}
	cancelWorkers()
	wg.Wait()
	return nil
}
