package queue

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// HashFile returns the lowercase hex SHA-256 digest of the file at path.
// A persisted run records it to notice when the queue was replaced.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
