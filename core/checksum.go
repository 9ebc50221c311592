package core

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/go-crypt/x/blake2b"
)

// checksumSize is the digest length in bytes (256-bit).
const checksumSize = 32

// HashReader computes the content checksum of a byte stream. The stream is
// consumed incrementally, so arbitrarily large inputs never load fully into
// memory. The result is a pure function of the bytes and independent of any
// file metadata.
func HashReader(r io.Reader) (string, error) {
	h, err := blake2b.New(checksumSize, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes computes the content checksum of an in-memory payload.
func HashBytes(data []byte) string {
	sum, _ := HashReader(bytes.NewReader(data))
	return sum
}
