// Package synchash derives a deterministic fingerprint of the active rule set
// and persists it next to the compiled outputs. A validator compares the
// stored value with a fresh computation to detect drift without re-reading
// any generated file.
package synchash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/rules"
)

// FileName is the hash file inside the .dwf cache directory.
const FileName = "rules.hash"

// Path returns the location of the hash file under root.
func Path(root string) string {
	return filepath.Join(rules.CachePath(root), FileName)
}

// Compute hashes the active rules. Inactive rules are ignored, input order does
// not matter, and any change to the scope, id, severity or content of an
// active rule yields a different value.
func Compute(in []rules.Rule) string {
	active := rules.Active(in)
	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.Scope != b.Scope {
			return a.Scope < b.Scope
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Severity != b.Severity {
			return a.Severity < b.Severity
		}
		return a.Content < b.Content
	})

	h := sha256.New()
	writeUint(h, uint64(len(active)))
	for _, r := range active {
		writeField(h, r.Scope)
		writeField(h, r.ID)
		writeField(h, string(r.Severity))
		writeField(h, r.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes s so adjacent fields cannot run together.
func writeField(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeUint(h hash.Hash, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
}

// Write stores hash under root, creating the cache directory on demand.
func Write(root, hash string) error {
	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to create cache directory", err).WithPath(path)
	}
	if err := os.WriteFile(path, []byte(hash), 0644); err != nil {
		return dwferrors.NewIOError(dwferrors.ErrCodeWriteFailed, "failed to write sync hash", err).WithPath(path)
	}
	return nil
}

// Read returns the stored hash. found is false when no hash has been written.
func Read(root string) (hash string, found bool, err error) {
	path := Path(root)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, dwferrors.NewIOError(dwferrors.ErrCodeReadFailed, "failed to read sync hash", err).WithPath(path)
	}
	return strings.TrimSpace(string(raw)), true, nil
}
