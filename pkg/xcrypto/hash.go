// Package xcrypto implements the streaming file-hashing and payload
// encryption primitives the collection pipeline uses: MD5/SHA-1/SHA-256 over
// arbitrarily large files with a bounded read buffer, and AES-GCM for
// encrypting job-result payloads in transit.
package xcrypto

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// ReadBufferSize bounds the read buffer used while streaming a file through
// one or more hash functions, independent of file size.
const ReadBufferSize = 64 * 1024 * 1024

// FileHashes holds the hex digests produced by HashFile.
type FileHashes struct {
	MD5    string
	SHA1   string
	SHA256 string
}

// HashFile streams r once through MD5, SHA-1, and SHA-256 in parallel,
// reading at most ReadBufferSize bytes at a time so memory stays bounded
// regardless of the artifact's size.
func HashFile(r io.Reader) (FileHashes, error) {
	md5h := md5.New()
	sha1h := sha1.New()
	sha256h := sha256.New()
	mw := io.MultiWriter(md5h, sha1h, sha256h)

	buf := make([]byte, ReadBufferSize)
	if _, err := io.CopyBuffer(mw, r, buf); err != nil {
		return FileHashes{}, err
	}

	return FileHashes{
		MD5:    hex.EncodeToString(md5h.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1h.Sum(nil)),
		SHA256: hex.EncodeToString(sha256h.Sum(nil)),
	}, nil
}

// MD5Hex hashes b and returns the lowercase hex digest; used as the marker
// store's cache key over an artifact's serialized configuration. The hash is
// a cache key, not a security boundary, so MD5's weaknesses don't apply.
func MD5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
