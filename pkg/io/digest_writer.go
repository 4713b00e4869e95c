package io

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// DigestWriter passes writes through to Delegate, counting the bytes and hashing them so what was written can be
// logged and compared without reading the file back.
type DigestWriter struct {
	Delegate     io.Writer
	BytesWritten int

	hash hash.Hash
}

func (w *DigestWriter) Write(p []byte) (int, error) {
	n, err := w.Delegate.Write(p)
	if w.hash == nil {
		w.hash = sha256.New()
	}
	w.hash.Write(p[:n])
	w.BytesWritten += n
	return n, err
}

// Digest is the hex sha256 of the bytes written so far.
func (w *DigestWriter) Digest() string {
	if w.hash == nil {
		w.hash = sha256.New()
	}
	return hex.EncodeToString(w.hash.Sum(nil))
}
