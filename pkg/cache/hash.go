package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of data. Records and image sets are
// hashed by content, so an edited record never hits a stale artifact.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// artifactKey joins the record hash and every option that changes the
// rendered bytes into one digest under kind.
func artifactKey(kind, recordHash string, opts ArtifactKeyOpts) string {
	h := sha256.New()
	for _, part := range []string{recordHash, opts.Format, opts.Sections, opts.ImagesHash} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
