package custodytest

import (
	"context"
	"time"

	custody "github.com/chidioffor/crypto-hybrid-sub000"
)

// ChainID is used by all contexts created with BlockCtx.
const ChainID = "custody-test"

// BlockCtx returns a context as the application would build it for a block
// at the given height and time.
func BlockCtx(height int64, now time.Time) custody.Context {
	ctx := context.Background()
	ctx = custody.WithHeight(ctx, height)
	ctx = custody.WithBlockTime(ctx, now)
	return custody.WithChainID(ctx, ChainID)
}
