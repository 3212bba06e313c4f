package testutil

import (
	"context"

	"github.com/creditledger/creditledger/internal/types"
)

const (
	TestUserID    = "user_01"
	TestUserEmail = "user01@example.com"
)

// SetupContext returns a context carrying the standard test identity.
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetRequestID(ctx, types.GenerateShortIDWithPrefix(types.UUID_PREFIX_REQUEST))
	ctx = types.SetUserID(ctx, TestUserID)
	ctx = types.SetUserEmail(ctx, TestUserEmail)
	return ctx
}
