package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// FingerprintKey is the metadata key under which the settings fingerprint
// of the cached data is stored.
const FingerprintKey = "settings_fingerprint"

// ComputeFingerprint computes a deterministic hash over the settings that
// influence per-file word counts. Map iteration order does not affect the
// result.
func ComputeFingerprint(settings map[string]string) string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s:%s\n", k, settings[k])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// SyncFingerprint compares fp against the stored fingerprint. On mismatch
// the cached files are dropped and fp is stored. It reports whether the
// cache was reset.
func (s *Store) SyncFingerprint(fp string) (bool, error) {
	stored, err := s.GetMetadata(FingerprintKey)
	if err != nil {
		return false, err
	}
	if stored == fp {
		return false, nil
	}
	if err := s.Reset(); err != nil {
		return false, err
	}
	if err := s.SetMetadata(FingerprintKey, fp); err != nil {
		return false, err
	}
	return true, nil
}
