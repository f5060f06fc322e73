package journal

import (
	"fmt"
	"os"
)

// sealSuffix is appended to a journal path to name its seal sentinel.
const sealSuffix = ".seal"

// SealPath returns the seal sentinel path for a journal file.
func SealPath(journalPath string) string {
	return journalPath + sealSuffix
}

// HasSeal reports whether journalPath's seal sentinel currently exists.
func HasSeal(journalPath string) bool {
	_, err := os.Stat(SealPath(journalPath))
	return err == nil
}

// CreateSeal creates the zero-byte seal sentinel for journalPath. The
// writer calls this at rotation to hand the just-closed file off to the
// ingester.
func CreateSeal(journalPath string) error {
	f, err := os.OpenFile(SealPath(journalPath), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("journal: create seal: %w", err)
	}
	return f.Close()
}

// RemoveSeal removes journalPath's seal sentinel. The ingester calls
// this after a successful drain to hand the file back to the writer.
func RemoveSeal(journalPath string) error {
	if err := os.Remove(SealPath(journalPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("journal: remove seal: %w", err)
	}
	return nil
}
