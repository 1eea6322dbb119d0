package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// File extension of durable cache entries.
const entryExtension = ".wav"

// keySeparator never appears in the URL-safe base64 alphabet, so two distinct
// (text, model) pairs cannot produce the same key.
const keySeparator = "."

// maxKeyBytes keeps ObjectName within the 255-byte file name limit.
const maxKeyBytes = 255 - len(entryExtension)

// Key derives the cache key for text spoken by model. Text is lowercased
// because synthesis is case-insensitive; model is used as given. Text too long
// to encode within maxKeyBytes is replaced by its SHA-256 digest.
func Key(text, model string) string {
	lowered := []byte(strings.ToLower(text))
	encodedModel := "m" + base64.RawURLEncoding.EncodeToString([]byte(model))

	key := "t" + base64.RawURLEncoding.EncodeToString(lowered) + keySeparator + encodedModel
	if len(key) <= maxKeyBytes {
		return key
	}

	digest := sha256.Sum256(lowered)

	return "h" + hex.EncodeToString(digest[:]) + keySeparator + encodedModel
}

// ObjectName is the durable object name (file name) for a cache key.
func ObjectName(key string) string {
	return key + entryExtension
}
