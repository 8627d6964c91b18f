package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Argon2id parameters. Stored hashes carry their own parameters so these can
// be raised without invalidating existing credentials.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper reads the server-side pepper from path, generating and persisting
// a new random pepper when the file does not exist yet. An empty path disables
// peppering.
func LoadPepper(path string) error {
	if path == "" {
		SetPepper("")
		return nil
	}

	path = filepath.Clean(path)
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		SetPepper(strings.TrimSpace(string(raw)))
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read pepper: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create pepper dir: %w", err)
	}
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate pepper: %w", err)
	}
	generated := base64.RawURLEncoding.EncodeToString(buf)
	if err := os.WriteFile(path, []byte(generated), 0o600); err != nil {
		return fmt.Errorf("write pepper: %w", err)
	}
	SetPepper(generated)
	return nil
}

// SetPepper replaces the in-memory pepper.
func SetPepper(p string) {
	pepperMu.Lock()
	pepper = p
	pepperMu.Unlock()
}

func currentPepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}
