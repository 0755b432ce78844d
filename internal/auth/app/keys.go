package app

import (
	"fmt"
	"log/slog"

	"github.com/arashvelash03-commits/gemini-test-openspec1/pkg/jwtx"
)

// InitAuthKeys generates the EdDSA keys that sign session tokens.
//
// Keys only live in memory. Restarting the service invalidates every
// session, which also clears the revocation list without losing anything.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer: cfg.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"num_keys", keyManager.NumSigners(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("all existing sessions are now invalid due to key rotation on startup")

	return keyManager, nil
}
