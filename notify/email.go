package notify

import (
	"fmt"
	"strings"

	"github.com/open-ibc/polylens/alert"
)

// AlertSubject renders the subject line for a channel's alert email.
func AlertSubject(channelID string) string {
	return fmt.Sprintf("Alert for Polymer channel %s", channelID)
}

// AlertBody renders the HTML body for one recipient's notification: one line
// per triggering packet plus a dashboard link.
func AlertBody(channelID, chain string, n *alert.Notification, dashboardURL string) string {
	details := make([]string, 0, len(n.Packets))
	for _, p := range n.Packets {
		details = append(details, fmt.Sprintf("Packet sequence %s took %d seconds", p.Sequence, p.Latency()))
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		"The following packets on channel <b>%s</b> on chain <b>%s</b> have exceeded the threshold of <i>%d</i> seconds:<br/><br/>",
		channelID, chain, n.Threshold)
	b.WriteString(strings.Join(details, "<br/>"))
	fmt.Fprintf(&b,
		"<br/><br/>To modify the alert settings, please visit the PolyLens <a href=%q>dashboard</a>",
		dashboardURL)
	return b.String()
}
