package ratelimit

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a stable, non-reversible form of a caller identifier so raw
// addresses are not written to shared stores.
func Digest(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:16])
}

func redisKey(algorithm, id string) string {
	return "ratelimit:" + algorithm + ":" + Digest(id)
}
