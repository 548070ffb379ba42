// Package packet reconstructs packet lifecycles from a chain's dispatcher
// send and acknowledgement events.
package packet

import "fmt"

// Key is the composite identity of one packet: the source port contract,
// the decoded channel id and the packet sequence. Unique within a scan.
type Key struct {
	PortAddress string
	ChannelID   string
	Sequence    string
}

// String renders the key in its canonical port-channel-sequence form.
func (k Key) String() string {
	return fmt.Sprintf("%s-%s-%s", k.PortAddress, k.ChannelID, k.Sequence)
}

// Packet is one cross-chain message's reconstructed lifecycle. EndTime 0
// means the packet has not been acknowledged within the scanned range.
type Packet struct {
	Sequence   string `json:"sequence"`
	CreateTime uint64 `json:"createTime"`
	EndTime    uint64 `json:"endTime"`
	SendTx     string `json:"sendTx"`
	AckTx      string `json:"ackTx"`
}

// Pending reports whether the packet is still unacknowledged.
func (p Packet) Pending() bool {
	return p.EndTime == 0
}

// Latency returns the packet's round-trip time in seconds, or 0 while the
// packet is pending.
func (p Packet) Latency() uint64 {
	if p.Pending() {
		return 0
	}
	return p.EndTime - p.CreateTime
}
