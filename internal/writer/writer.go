// Package writer implements MigrationWriter: assigning deterministic
// filenames, computing a content hash, and writing SQL files
// idempotently -- a call that would produce byte-identical content to an
// existing file is a no-op, matching the append-only file lifecycle of
// spec section 3.
package writer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/entgen/migrator/internal/logging"
	"github.com/entgen/migrator/internal/schemaprovider"
)

const hashPrefix = "-- HASH: "

// Write computes contentBody's hash, checks targetDir for an existing file
// at this (sortNumber, baseName) whose hash header already matches, and
// either skips (idempotent, returns false) or writes a new file named per
// provider's naming policy (returns true). timestamp is the run's frozen
// executionTimestamp, formatted as yyyyMMddHHmmss by the caller.
func Write(provider schemaprovider.SchemaProvider, targetDir, timestamp string, sortNumber int, baseName, contentBody string, log logging.Logger) (bool, error) {
	newHash := contentHash(contentBody)

	if matched, err := hasMatchingHash(provider, targetDir, sortNumber, baseName, newHash); err != nil {
		log.Warn(fmt.Sprintf("writer: scanning %s: %v", targetDir, err))
	} else if matched {
		return false, nil
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return false, fmt.Errorf("writer: creating %s: %w", targetDir, err)
	}

	filename := provider.FileName(timestamp, sortNumber, baseName)
	fullPath := filepath.Join(targetDir, filename)

	content := hashPrefix + newHash + "\n" + contentBody
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("writer: writing %s: %w", fullPath, err)
	}
	return true, nil
}

// contentHash returns the first 16 hex characters of the SHA-256 digest
// of body.
func contentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])[:16]
}

// hasMatchingHash scans every file in targetDir matching provider's naming
// pattern for (sortNumber, baseName) and reports whether any of their
// first-line hash headers equals newHash. Per spec section 4.6 step 2,
// every matching file must be checked, not just the first one returned by
// os.ReadDir: a table can accumulate several files under the same
// (sortNumber, baseName) across runs (e.g. successive alter_<t>_table
// versions), and ReadDir's directory order has no relation to which of
// them holds the current content.
func hasMatchingHash(provider schemaprovider.SchemaProvider, targetDir string, sortNumber int, baseName, newHash string) (bool, error) {
	entries, err := os.ReadDir(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	pattern := provider.Regex(sortNumber, baseName)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Errorf("invalid naming pattern %q: %w", pattern, err)
	}

	for _, e := range entries {
		if e.IsDir() || !re.MatchString(e.Name()) {
			continue
		}
		first, err := firstLine(filepath.Join(targetDir, e.Name()))
		if err != nil {
			continue
		}
		if strings.HasPrefix(first, hashPrefix) && strings.TrimPrefix(first, hashPrefix) == newHash {
			return true, nil
		}
	}
	return false, nil
}

func firstLine(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if idx := strings.IndexByte(string(content), '\n'); idx >= 0 {
		return string(content)[:idx], nil
	}
	return string(content), nil
}
