package cache

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const verdictKeyPrefix = "primelab:verdict:"

// redisKey bounds key length regardless of how many digits the candidate has.
func redisKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return verdictKeyPrefix + hex.EncodeToString(sum[:])
}
