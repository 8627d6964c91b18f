package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// loadSecret returns the signing secret from the inline value or, when that
// is empty, from the file. Trailing whitespace in the file is ignored.
func loadSecret(inline, path string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("AUTH_JWT_SECRET_FILE: %w", err)
	}
	return []byte(strings.TrimRight(string(raw), "\r\n\t ")), nil
}

// InitCodec builds the access token codec from the configured secret.
//
// The secret is shared by every replica; rotating it invalidates all
// outstanding access tokens but leaves refresh tokens usable.
func InitCodec(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret:    cfg.JWTSecret,
		Algorithm: cfg.JWTAlgorithm,
		Issuer:    cfg.Issuer,
		Audience:  cfg.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	logger.Info("token codec ready",
		"algorithm", codec.Algorithm(),
		"issuer", cfg.Issuer,
		"audience", cfg.Audience,
	)
	return codec, nil
}
