package monitor

import (
	"context"

	"github.com/open-ibc/polylens/chains/evm"
	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/packet"
)

// SearchChannel reconstructs a channel's packets over the chain's full
// history: one unbounded correlator run with no watermark or alert
// interaction. Interactive counterpart to the scan job.
func (j *Job) SearchChannel(ctx context.Context, channelID, chain string, clientType config.ClientType) ([]packet.Packet, error) {
	gateway, err := j.gateways(chain)
	if err != nil {
		return nil, err
	}

	sends, err := gateway.FilterChannelEvents(ctx, evm.EventKindSend, clientType, channelID, 0, 0)
	if err != nil {
		return nil, err
	}
	acks, err := gateway.FilterChannelEvents(ctx, evm.EventKindAck, clientType, channelID, 0, 0)
	if err != nil {
		return nil, err
	}

	correlator := packet.NewCorrelator(gateway.BlockTimestamp, j.concurrency, j.logger)
	return correlator.Correlate(ctx, sends, acks)
}
