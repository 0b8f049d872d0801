package credstore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/rs/zerolog/log"
)

const (
	identityFile = "identity.key"
	secretsDir   = "secrets"
)

// SecureStore keeps each value in its own file under <dir>/secrets,
// encrypted to an age X25519 identity held at <dir>/identity.key. The
// identity file is the availability gate: if it cannot be created or
// parsed the store is considered unavailable and Select falls back.
type SecureStore struct {
	dir      string
	identity *age.X25519Identity
}

// NewSecureStore loads or creates the age identity under dir and returns
// the store. Returns an error if the identity cannot be established, which
// Select treats as the backend being unavailable.
func NewSecureStore(dir string) (*SecureStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, secretsDir), 0o700); err != nil {
		return nil, fmt.Errorf("create secrets dir: %w", err)
	}

	idPath := filepath.Join(dir, identityFile)
	raw, err := os.ReadFile(idPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read identity: %w", err)
		}
		identity, err := age.GenerateX25519Identity()
		if err != nil {
			return nil, fmt.Errorf("generate identity: %w", err)
		}
		if err := os.WriteFile(idPath, []byte(identity.String()+"\n"), 0o600); err != nil {
			return nil, fmt.Errorf("write identity: %w", err)
		}
		return &SecureStore{dir: dir, identity: identity}, nil
	}

	identity, err := age.ParseX25519Identity(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	return &SecureStore{dir: dir, identity: identity}, nil
}

// Name identifies the backend in logs.
func (s *SecureStore) Name() string { return "secure" }

func (s *SecureStore) keyPath(key string) string {
	return filepath.Join(s.dir, secretsDir, key+".age")
}

// Save encrypts value to the store's identity and writes it under the key.
func (s *SecureStore) Save(key, value string) bool {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.identity.Recipient())
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: encrypt failed")
		return false
	}
	if _, err := io.WriteString(w, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: encrypt failed")
		return false
	}
	if err := w.Close(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: encrypt failed")
		return false
	}

	enc := base64.StdEncoding.EncodeToString(buf.Bytes())
	if err := os.WriteFile(s.keyPath(key), []byte(enc), 0o600); err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: write failed")
		return false
	}
	return true
}

// Get reads and decrypts the value for the key. Absent keys and read or
// decrypt failures both report absence.
func (s *SecureStore) Get(key string) (string, bool) {
	raw, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Error().Err(err).Str("key", key).Msg("credstore: read failed")
		}
		return "", false
	}

	ct, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: corrupt value")
		return "", false
	}
	r, err := age.Decrypt(bytes.NewReader(ct), s.identity)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: decrypt failed")
		return "", false
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("credstore: decrypt failed")
		return "", false
	}
	return string(plain), true
}

// Remove deletes the key. A key that was never written counts as removed.
func (s *SecureStore) Remove(key string) bool {
	if err := os.Remove(s.keyPath(key)); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("key", key).Msg("credstore: remove failed")
		return false
	}
	return true
}

// ClearAll removes every known key from this backend, then wipes the
// fallback backend's namespace in case an earlier run used it. Individual
// failures are logged and swallowed; used only at logout.
func (s *SecureStore) ClearAll() bool {
	ok := true
	for _, key := range KnownKeys {
		if !s.Remove(key) {
			ok = false
		}
	}
	wipeFallbackFiles(s.dir)
	return ok
}
