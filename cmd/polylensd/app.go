package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/open-ibc/polylens/chains/evm"
	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/db"
	"github.com/open-ibc/polylens/monitor"
	"github.com/open-ibc/polylens/notify"
	"github.com/open-ibc/polylens/store"
)

const dbFileName = "polylens.db"

// App wires the stores, gateways, notifier and scan job together.
type App struct {
	Job    *monitor.Job
	Alerts *store.AlertStore

	database *db.DB
	gateways *gatewayCache
}

// buildApp opens the monitor database and constructs the scan job and its
// collaborators from config.
func buildApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	database, err := db.OpenFileDB(cfg.MonitorHome, dbFileName, true)
	if err != nil {
		return nil, err
	}

	alerts := store.NewAlertStore(database.Client())
	cursor := store.NewBlockCursor(database.Client())
	sentAlerts := store.NewSentAlertStore(database.Client())

	var notifier notify.Notifier
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		notifier, err = notify.NewMailgunNotifier(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunFrom, log)
		if err != nil {
			database.Close()
			return nil, err
		}
	} else {
		log.Warn().Msg("no mailgun credentials configured, notifications are log-only")
		notifier = notify.NewLogNotifier(log)
	}

	gateways := newGatewayCache(cfg, log)
	job := monitor.NewJob(
		alerts,
		cursor,
		sentAlerts,
		gateways.Get,
		notifier,
		cfg.LookupConcurrency,
		cfg.DashboardURL,
		log,
	)

	return &App{
		Job:      job,
		Alerts:   alerts,
		database: database,
		gateways: gateways,
	}, nil
}

// Close releases the database and all dialled gateways.
func (a *App) Close() {
	a.gateways.Close()
	a.database.Close()
}

// gatewayCache dials each chain's gateway once and reuses it across scan
// passes.
type gatewayCache struct {
	cfg *config.Config
	log zerolog.Logger

	mu       sync.Mutex
	gateways map[string]*evm.Gateway
}

func newGatewayCache(cfg *config.Config, log zerolog.Logger) *gatewayCache {
	return &gatewayCache{
		cfg:      cfg,
		log:      log,
		gateways: make(map[string]*evm.Gateway),
	}
}

// Get returns the chain's gateway, dialling it on first use.
func (gc *gatewayCache) Get(chain string) (monitor.ChainGateway, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if gateway, ok := gc.gateways[chain]; ok {
		return gateway, nil
	}

	chainCfg, err := gc.cfg.Chain(chain)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(gc.cfg.RPCTimeoutSeconds) * time.Second
	gateway, err := evm.NewGateway(chain, chainCfg, timeout, gc.log)
	if err != nil {
		return nil, err
	}
	gc.gateways[chain] = gateway
	return gateway, nil
}

func (gc *gatewayCache) Close() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	for _, gateway := range gc.gateways {
		gateway.Close()
	}
	gc.gateways = make(map[string]*evm.Gateway)
}
