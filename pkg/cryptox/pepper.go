package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepperMu   sync.RWMutex
	pepper     string
	pepperFile = "data/pepper"
)

// SetPepperPath sets the file the pepper is read from, or created in when missing.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

// GetPepper returns the server-wide pepper appended to passwords before hashing.
// The process exits if the pepper can neither be read nor created, since every
// stored hash depends on it.
func GetPepper() string {
	pepperMu.RLock()
	p := pepper
	pepperMu.RUnlock()
	if p != "" {
		return p
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	return pepper
}

func loadOrGeneratePepper(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	data, err := os.ReadFile(file)
	if err == nil {
		return strings.TrimSpace(string(data)), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(p), 0600); err != nil {
		return "", err
	}
	slog.Info("generated new password pepper", "path", file)
	return p, nil
}
