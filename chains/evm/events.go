package evm

import (
	"fmt"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// EventKind selects which dispatcher event to query.
type EventKind string

const (
	// EventKindSend is the dispatcher's packet-send event.
	EventKindSend EventKind = "SendPacket"

	// EventKindAck is the dispatcher's packet-acknowledgement event.
	EventKindAck EventKind = "Acknowledgement"
)

// Dispatcher event signatures. Both index the source port address and the
// source channel id; the sequence lives in the data section.
//
//	SendPacket(address indexed sourcePortAddress, bytes32 indexed sourceChannelId,
//	           bytes packet, uint64 sequence, uint64 timeoutTimestamp)
//	Acknowledgement(address indexed sourcePortAddress, bytes32 indexed sourceChannelId,
//	                uint64 sequence)
var (
	sendPacketTopic      = crypto.Keccak256Hash([]byte("SendPacket(address,bytes32,bytes,uint64,uint64)"))
	acknowledgementTopic = crypto.Keccak256Hash([]byte("Acknowledgement(address,bytes32,uint64)"))
)

// Topic returns the keccak topic hash for the event kind.
func (k EventKind) Topic() (ethcommon.Hash, error) {
	switch k {
	case EventKindSend:
		return sendPacketTopic, nil
	case EventKindAck:
		return acknowledgementTopic, nil
	default:
		return ethcommon.Hash{}, fmt.Errorf("unknown event kind %q", k)
	}
}

// ChannelEvent is one dispatcher send or ack event, reduced to the fields
// the correlator needs.
type ChannelEvent struct {
	PortAddress string // Source port contract address (hex)
	ChannelID   string // Decoded channel id
	Sequence    string // Decimal packet sequence
	BlockNumber uint64
	TxHash      string
}

// parseChannelEvent extracts a ChannelEvent from a raw dispatcher log. The
// sequence word position differs per event: SendPacket carries
// (bytes-offset, sequence, timeoutTimestamp) in data, Acknowledgement just
// (sequence).
func parseChannelEvent(kind EventKind, log types.Log) (ChannelEvent, error) {
	if len(log.Topics) < 3 {
		return ChannelEvent{}, fmt.Errorf("dispatcher log has %d topics, want 3", len(log.Topics))
	}

	seqWord := 0
	if kind == EventKindSend {
		seqWord = 1
	}
	if len(log.Data) < (seqWord+1)*32 {
		return ChannelEvent{}, fmt.Errorf("dispatcher log data too short: %d bytes", len(log.Data))
	}
	sequence := new(big.Int).SetBytes(log.Data[seqWord*32 : (seqWord+1)*32])

	return ChannelEvent{
		PortAddress: ethcommon.BytesToAddress(log.Topics[1].Bytes()).Hex(),
		ChannelID:   DecodeChannelID(log.Topics[2]),
		Sequence:    sequence.String(),
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
	}, nil
}

// EncodeChannelID encodes a channel id string as a right-padded bytes32
// topic value, matching how dispatcher contracts index channel ids.
func EncodeChannelID(channelID string) (ethcommon.Hash, error) {
	raw := []byte(channelID)
	if len(raw) > 31 {
		return ethcommon.Hash{}, fmt.Errorf("channel id %q exceeds 31 bytes", channelID)
	}

	var topic ethcommon.Hash
	copy(topic[:], raw)
	return topic, nil
}

// DecodeChannelID reverses EncodeChannelID, trimming the zero padding.
func DecodeChannelID(topic ethcommon.Hash) string {
	end := 0
	for end < len(topic) && topic[end] != 0 {
		end++
	}
	return string(topic[:end])
}
