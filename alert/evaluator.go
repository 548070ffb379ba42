// Package alert evaluates latency thresholds against reconstructed packets
// and plans one notification per recipient.
package alert

import (
	"github.com/open-ibc/polylens/packet"
	"github.com/open-ibc/polylens/store"
)

// Notification is the planned outbound message for one recipient: every
// packet that triggered any of the recipient's alerts in this pass, plus the
// distinct alert ids that fired (one audit row each).
type Notification struct {
	// Threshold is the highest threshold among the recipient's fired
	// alerts, quoted in the email body.
	Threshold uint64

	// Packets lists each triggering packet once, in packet order.
	Packets []packet.Packet

	// AlertIDs lists the distinct fired alert ids in firing order.
	AlertIDs []uint
}

// Evaluate matches one group's active alerts against its scan window's
// packets. An alert fires for a packet iff the packet is acknowledged and
// its latency strictly exceeds the alert's threshold; pending packets never
// fire. Firings aggregate per recipient email. Pure: no I/O, no dedup
// against notification history.
func Evaluate(alerts []store.Alert, packets []packet.Packet) map[string]*Notification {
	notifications := make(map[string]*Notification)

	for _, a := range alerts {
		fired := false
		for _, p := range packets {
			if p.Pending() || p.Latency() <= a.Threshold {
				continue
			}
			fired = true

			n, ok := notifications[a.UserEmail]
			if !ok {
				n = &Notification{}
				notifications[a.UserEmail] = n
			}
			if a.Threshold > n.Threshold {
				n.Threshold = a.Threshold
			}
			if !containsPacket(n.Packets, p) {
				n.Packets = append(n.Packets, p)
			}
		}
		if fired {
			n := notifications[a.UserEmail]
			if !containsID(n.AlertIDs, a.ID) {
				n.AlertIDs = append(n.AlertIDs, a.ID)
			}
		}
	}

	return notifications
}

func containsPacket(packets []packet.Packet, p packet.Packet) bool {
	for _, existing := range packets {
		if existing.Sequence == p.Sequence && existing.SendTx == p.SendTx {
			return true
		}
	}
	return false
}

func containsID(ids []uint, id uint) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
