package api

import (
	"context"

	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/packet"
	"github.com/open-ibc/polylens/store"
)

// Scanner is the scan/search surface the server exposes. Satisfied by
// *monitor.Job.
type Scanner interface {
	Run(ctx context.Context) error
	SearchChannel(ctx context.Context, channelID, chain string, clientType config.ClientType) ([]packet.Packet, error)
}

// AlertService is the alert CRUD surface. Satisfied by *store.AlertStore.
type AlertService interface {
	Create(alert *store.Alert) error
	SoftDelete(id uint) error
	ListActiveByUser(email string) ([]store.Alert, error)
}
