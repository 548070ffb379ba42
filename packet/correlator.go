package packet

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/open-ibc/polylens/chains/evm"
)

// TimestampLookup resolves a block number to its unix timestamp (seconds).
type TimestampLookup func(ctx context.Context, blockNumber uint64) (uint64, error)

// Correlator turns one channel's send and ack event streams into an ordered
// packet list. Block timestamps are resolved through the lookup with bounded
// parallelism; an individual lookup failure only loses that event's effect,
// never the batch.
type Correlator struct {
	lookup      TimestampLookup
	concurrency int
	logger      zerolog.Logger
}

// NewCorrelator creates a correlator.
func NewCorrelator(lookup TimestampLookup, concurrency int, logger zerolog.Logger) *Correlator {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Correlator{
		lookup:      lookup,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "correlator").Logger(),
	}
}

// Correlate builds packets from the send events, then attaches matching
// acks. Acks with no known key are dropped (their send was not in this scan
// window), as are acks whose block timestamp precedes the packet's create
// time. The result is sorted ascending by create time, ties by key, so it is
// independent of input event order. Zero send events short-circuit to an
// empty result without any timestamp lookups.
func (c *Correlator) Correlate(ctx context.Context, sends, acks []evm.ChannelEvent) ([]Packet, error) {
	if len(sends) == 0 {
		return []Packet{}, nil
	}

	timestamps := c.resolveTimestamps(ctx, sends)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	packets := make(map[Key]*Packet, len(sends))
	for _, event := range sends {
		createTime, ok := timestamps[event.BlockNumber]
		if !ok {
			// Lookup failed; the packet stays unknown this pass
			continue
		}
		// Last write wins on key collision; channels are not expected to
		// reuse sequence numbers
		packets[eventKey(event)] = &Packet{
			Sequence:   event.Sequence,
			CreateTime: createTime,
			EndTime:    0,
			SendTx:     event.TxHash,
			AckTx:      "",
		}
	}

	c.applyAcks(ctx, packets, acks)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return sortPackets(packets), nil
}

// applyAcks attaches ack events to already-known packets. Runs strictly
// after send correlation.
func (c *Correlator) applyAcks(ctx context.Context, packets map[Key]*Packet, acks []evm.ChannelEvent) {
	matched := make([]evm.ChannelEvent, 0, len(acks))
	for _, event := range acks {
		if _, ok := packets[eventKey(event)]; !ok {
			c.logger.Debug().
				Str("key", eventKey(event).String()).
				Msg("no packet found for ack")
			continue
		}
		matched = append(matched, event)
	}
	if len(matched) == 0 {
		return
	}

	timestamps := c.resolveTimestamps(ctx, matched)
	for _, event := range matched {
		ackTime, ok := timestamps[event.BlockNumber]
		if !ok {
			continue
		}

		pkt := packets[eventKey(event)]
		if ackTime < pkt.CreateTime {
			c.logger.Warn().
				Str("key", eventKey(event).String()).
				Uint64("create_time", pkt.CreateTime).
				Uint64("ack_time", ackTime).
				Msg("negative latency detected, discarding ack")
			continue
		}
		pkt.EndTime = ackTime
		pkt.AckTx = event.TxHash
	}
}

// resolveTimestamps fetches block timestamps for the events' distinct block
// numbers in parallel. Failures are logged and settled: a missing entry in
// the returned map marks that block's lookup as failed.
func (c *Correlator) resolveTimestamps(ctx context.Context, events []evm.ChannelEvent) map[uint64]uint64 {
	blocks := make(map[uint64]struct{}, len(events))
	for _, event := range events {
		blocks[event.BlockNumber] = struct{}{}
	}

	var mu sync.Mutex
	timestamps := make(map[uint64]uint64, len(blocks))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.concurrency)
	for block := range blocks {
		group.Go(func() error {
			ts, err := c.lookup(groupCtx, block)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Uint64("block", block).
					Msg("failed to resolve block timestamp")
				return nil
			}
			mu.Lock()
			timestamps[block] = ts
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes
	_ = group.Wait()

	return timestamps
}

func eventKey(event evm.ChannelEvent) Key {
	return Key{
		PortAddress: event.PortAddress,
		ChannelID:   event.ChannelID,
		Sequence:    event.Sequence,
	}
}

func sortPackets(packets map[Key]*Packet) []Packet {
	keys := make([]Key, 0, len(packets))
	for key := range packets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := packets[keys[i]], packets[keys[j]]
		if a.CreateTime != b.CreateTime {
			return a.CreateTime < b.CreateTime
		}
		return keys[i].String() < keys[j].String()
	})

	result := make([]Packet, 0, len(keys))
	for _, key := range keys {
		result = append(result, *packets[key])
	}
	return result
}
