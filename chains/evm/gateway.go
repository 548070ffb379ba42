// Package evm implements the chain gateway: block and dispatcher-event
// queries against one EVM chain's JSON-RPC endpoint.
package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/open-ibc/polylens/config"
)

// Gateway wraps one chain's eth client together with its registry entry.
// All calls run under a per-call timeout.
type Gateway struct {
	chain     string
	cfg       config.ChainConfig
	ethClient *ethclient.Client
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewGateway dials the chain's RPC endpoint and returns a gateway for it.
func NewGateway(chain string, cfg config.ChainConfig, timeout time.Duration, logger zerolog.Logger) (*Gateway, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("chain %q has no rpc url", chain)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ethClient, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc for chain %q: %w", chain, err)
	}

	return &Gateway{
		chain:     chain,
		cfg:       cfg,
		ethClient: ethClient,
		timeout:   timeout,
		logger: logger.With().
			Str("component", "evm_gateway").
			Str("chain", chain).
			Logger(),
	}, nil
}

// Chain returns the gateway's chain registry name.
func (g *Gateway) Chain() string {
	return g.chain
}

// Close releases the underlying RPC connection.
func (g *Gateway) Close() {
	if g.ethClient != nil {
		g.ethClient.Close()
	}
}

// HeadBlock returns the chain's current head block number.
func (g *Gateway) HeadBlock(ctx context.Context) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	head, err := g.ethClient.BlockNumber(callCtx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch head block for %s: %w", g.chain, err)
	}
	return head, nil
}

// BlockTimestamp returns the unix timestamp (seconds) of the given block.
func (g *Gateway) BlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	header, err := g.ethClient.HeaderByNumber(callCtx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch header %d for %s: %w", blockNumber, g.chain, err)
	}
	return header.Time, nil
}

// FilterChannelEvents queries the dispatcher selected by clientType for send
// or ack events on one channel over [fromBlock, toBlock]. toBlock 0 means
// latest.
func (g *Gateway) FilterChannelEvents(
	ctx context.Context,
	kind EventKind,
	clientType config.ClientType,
	channelID string,
	fromBlock, toBlock uint64,
) ([]ChannelEvent, error) {
	dispatcher := g.cfg.DispatcherAddress(clientType)
	if dispatcher == "" {
		return nil, fmt.Errorf("chain %q has no %s dispatcher configured", g.chain, clientType)
	}

	topic, err := kind.Topic()
	if err != nil {
		return nil, err
	}
	channelTopic, err := EncodeChannelID(channelID)
	if err != nil {
		return nil, err
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []ethcommon.Address{ethcommon.HexToAddress(dispatcher)},
		Topics: [][]ethcommon.Hash{
			{topic},
			nil, // any source port address
			{channelTopic},
		},
	}
	if toBlock != 0 {
		query.ToBlock = new(big.Int).SetUint64(toBlock)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logs, err := g.ethClient.FilterLogs(callCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s logs for %s: %w", kind, g.chain, err)
	}

	events := make([]ChannelEvent, 0, len(logs))
	for _, log := range logs {
		event, err := parseChannelEvent(kind, log)
		if err != nil {
			// Malformed logs are dropped, not fatal to the query
			g.logger.Warn().
				Err(err).
				Str("tx", log.TxHash.Hex()).
				Uint64("block", log.BlockNumber).
				Msg("skipping unparseable dispatcher log")
			continue
		}
		events = append(events, event)
	}

	g.logger.Debug().
		Str("kind", string(kind)).
		Str("channel", channelID).
		Uint64("from", fromBlock).
		Uint64("to", toBlock).
		Int("events", len(events)).
		Msg("queried dispatcher logs")

	return events, nil
}
