// Package sha512hash implements the one real crypto primitive the
// protocol core performs itself: SHA-512 checksumming of request bodies
// and chunk bytes. It is not metadata encryption and is not excluded by
// the crypto Non-goal - it mirrors the teacher's SHA1Hash/SHA256Hash
// helpers in pkg/graph/hashes.go, generalized to SHA-512 hex digests.
package sha512hash

import (
	"crypto/sha512"
	"fmt"
	"io"
)

// Buffer returns the lowercase hex SHA-512 digest of data, corresponding
// to the source's bufferToHash(bytes, "SHA-512").
func Buffer(data []byte) string {
	sum := sha512.Sum512(data)
	return fmt.Sprintf("%x", sum)
}

// Stream hashes the contents of a reader, resetting a seekable reader to
// its start afterward, mirroring SHA256HashStream's seek-reset contract.
func Stream(r io.ReadSeeker) (string, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	hash := sha512.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
