// Command totp-encrypt seals TOTP secrets that were stored before secrets
// were encrypted at rest. It reads the same configuration as the auth
// service and is safe to run more than once.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/app"
	"github.com/arashvelash03-commits/gemini-test-openspec1/internal/auth/service"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/cryptox"
	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/slogx"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "only report how many secrets are still plaintext")
	flag.Parse()

	os.Exit(run(*dryRun, os.Stdout, os.Stderr))
}

func run(dryRun bool, stdout, stderr io.Writer) int {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger := slogx.New(slogx.Config{
		Output:  stderr,
		Service: "totp-encrypt",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
	})
	ctx := slogx.WithContext(context.Background(), logger)

	key, err := cryptox.LoadSecretKey(cfg.EncryptionKey, cfg.Production())
	if err != nil {
		logger.Error("failed to load encryption key", slog.Any("error", err))
		return 1
	}
	cipher, err := cryptox.NewSecretCipher(key, logger)
	if err != nil {
		logger.Error("failed to initialize secret cipher", slog.Any("error", err))
		return 1
	}

	db, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", slog.Any("error", err))
		}
	}()

	if err := db.ApplyMigrations(); err != nil {
		logger.Error("failed to apply database migrations", slog.Any("error", err))
		return 1
	}

	mfa := &service.MFAService{
		Store:  db,
		Audit:  &service.AuditRecorder{Store: db},
		Cipher: cipher,
	}

	pending, err := mfa.LegacySecretCount(ctx)
	if err != nil {
		logger.Error("failed to count plaintext secrets", slog.Any("error", err))
		return 1
	}
	if dryRun || pending == 0 {
		fmt.Fprintf(stdout, "%d plaintext secret(s) pending\n", pending)
		return 0
	}

	n, err := mfa.EncryptLegacySecrets(ctx)
	if err != nil {
		logger.Error("encryption stopped", slog.Int("encrypted", n), slog.Int("pending", pending), slog.Any("error", err))
		return 1
	}
	fmt.Fprintf(stdout, "encrypted %d secret(s)\n", n)
	return 0
}
