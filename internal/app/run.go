package app

import (
	"context"
	"fmt"

	"github.com/VladKovDev/cryptocart/internal/config"
	"github.com/VladKovDev/cryptocart/internal/crypto"
	"github.com/VladKovDev/cryptocart/internal/debuglog"
	"github.com/VladKovDev/cryptocart/internal/gateway/coinpayments"
	"github.com/VladKovDev/cryptocart/internal/notify"
	"github.com/VladKovDev/cryptocart/internal/server"
	"github.com/VladKovDev/cryptocart/pkg/logger"
	"go.uber.org/zap"
)

// Run loads configuration, builds the App and serves HTTP until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, configPath string) error {
	a, err := Bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(a.Config.Server, a.Router(), a.Logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	return gracefulShutdown(ctx, cancel, a.Logger, serverErr, a.Config.Server.ShutdownTimeout)
}

// Bootstrap runs the start-up sequence shared by every command.
func Bootstrap(ctx context.Context, configPath string) (*App, error) {
	cfg, err := initConfig(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	log.Debug("logger debug enabled...")

	a, err := NewApp(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func initConfig(ctx context.Context, configPath string) (*config.Config, error) {
	return config.Load(ctx, configPath)
}

func initLogger(cfg *config.Config) (logger.Logger, error) {
	return logger.New(cfg.Logger)
}

// initEncryptor returns nil when no keys are configured.
func initEncryptor(cfg *config.Config) (*crypto.KeyStore, error) {
	if len(cfg.Crypto.Keys) == 0 {
		return nil, nil
	}
	return crypto.NewAESKeyStore(cfg.Crypto.CurrentVersion, cfg.Crypto.Keys)
}

func initDebugLog(cfg *config.Config, log logger.Logger) *debuglog.Logger {
	dl, err := debuglog.New(cfg.DebugLog)
	if err != nil {
		log.Warn("debug log unavailable", zap.String("path", cfg.DebugLog.Path), zap.Error(err))
		return debuglog.Discard()
	}
	return dl
}

// initNotifiers wires the report channels that are configured. A channel that
// fails to start is logged and skipped.
func initNotifiers(cfg *config.Config, log logger.Logger) []coinpayments.Option {
	var opts []coinpayments.Option

	if cfg.Mail.Enabled() {
		mailer := notify.NewReportMailer(notify.NewSMTPMailer(cfg.Mail), cfg.Mail.From, cfg.Mail.FromName)
		opts = append(opts, coinpayments.WithMailer(mailer))
	} else {
		log.Info("mail not configured, IPN reports will not be emailed")
	}

	if cfg.Telegram.Enabled() {
		sender, err := notify.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.DebugChatID)
		if err != nil {
			log.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			opts = append(opts, coinpayments.WithNotifier(sender))
		}
	}

	return opts
}
