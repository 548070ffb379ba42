package monitor

import (
	"context"

	"github.com/open-ibc/polylens/chains/evm"
	"github.com/open-ibc/polylens/config"
)

// ChainGateway is the per-chain capability the scan job consumes. Satisfied
// by *evm.Gateway; tests substitute fakes.
type ChainGateway interface {
	HeadBlock(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error)
	FilterChannelEvents(
		ctx context.Context,
		kind evm.EventKind,
		clientType config.ClientType,
		channelID string,
		fromBlock, toBlock uint64,
	) ([]evm.ChannelEvent, error)
}

// GatewayFactory resolves a chain registry name to its gateway.
type GatewayFactory func(chain string) (ChainGateway, error)
