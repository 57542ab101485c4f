package bootstrap

import (
	"log/slog"

	"github.com/target/prreview-api/internal/core"
	"github.com/target/prreview-api/internal/data/cryptoutil"
)

// CreateSealer builds the credential sealer used between the dispatcher and the worker.
// A 64-char hex key is used as-is; any other key is hashed to 32 bytes.
// Returns a noop sealer if the key is empty or invalid (with warning log).
//
//nolint:ireturn // Returning interface is intentional for sealer abstraction
func CreateSealer(key string, logger *slog.Logger) core.CredentialSealer {
	if logger == nil {
		logger = slog.Default()
	}
	if key == "" {
		logger.Warn("credentials encryption key is empty, queued credentials are not encrypted")
		return cryptoutil.NoopSealer{}
	}

	keyBytes, err := cryptoutil.DeriveKey(key)
	if err != nil {
		logger.Warn("failed to derive credentials key, using noop sealer", "error", err)
		return cryptoutil.NoopSealer{}
	}
	sealer, err := cryptoutil.NewAESGCMSealer(keyBytes)
	if err != nil {
		logger.Warn("failed to create credentials sealer, using noop sealer", "error", err)
		return cryptoutil.NoopSealer{}
	}
	return sealer
}
