package types

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

const (
	UUID_PREFIX_SUBSCRIPTION   = "subs"
	UUID_PREFIX_CREDIT_BALANCE = "cbal"
	UUID_PREFIX_PAYMENT        = "pay"
	UUID_PREFIX_REQUEST        = "req"
)

// GenerateUUID returns a k-sortable unique identifier.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Now(), ulid.DefaultEntropy()).String())
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a given prefix, e.g. subs_01hx...
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}

// GenerateShortIDWithPrefix returns a short unique identifier with a given
// prefix, for human-facing references like request IDs.
func GenerateShortIDWithPrefix(prefix string) string {
	id, err := shortid.Generate()
	if err != nil {
		// shortid only fails on a broken entropy source; fall back to ULID
		return GenerateUUIDWithPrefix(prefix)
	}
	return prefix + id
}
