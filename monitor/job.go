// Package monitor orchestrates the alert scan: it groups active alerts,
// scans each group's chain for new dispatcher events, correlates packets,
// evaluates thresholds and dispatches notifications.
package monitor

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/open-ibc/polylens/alert"
	"github.com/open-ibc/polylens/chains/evm"
	"github.com/open-ibc/polylens/config"
	"github.com/open-ibc/polylens/notify"
	"github.com/open-ibc/polylens/packet"
	"github.com/open-ibc/polylens/store"
)

// group identifies one independent scan unit: every active alert sharing a
// (channel, chain, clientType) triple.
type group struct {
	ChannelID  string
	Chain      string
	ClientType config.ClientType
}

// Job runs one alert scan pass over all groups derived from the active
// alerts. Invocations must not overlap; the Runner serializes them.
type Job struct {
	alerts       *store.AlertStore
	cursor       *store.BlockCursor
	sentAlerts   *store.SentAlertStore
	gateways     GatewayFactory
	notifier     notify.Notifier
	concurrency  int
	dashboardURL string
	logger       zerolog.Logger
}

// NewJob creates the scan job.
func NewJob(
	alerts *store.AlertStore,
	cursor *store.BlockCursor,
	sentAlerts *store.SentAlertStore,
	gateways GatewayFactory,
	notifier notify.Notifier,
	concurrency int,
	dashboardURL string,
	logger zerolog.Logger,
) *Job {
	return &Job{
		alerts:       alerts,
		cursor:       cursor,
		sentAlerts:   sentAlerts,
		gateways:     gateways,
		notifier:     notifier,
		concurrency:  concurrency,
		dashboardURL: dashboardURL,
		logger:       logger.With().Str("component", "alert_scan_job").Logger(),
	}
}

// Run executes one full pass. A group's failure is logged and isolated: its
// watermark stays put and the remaining groups still run. Run returns an
// error only when the context is cancelled before the pass completes.
func (j *Job) Run(ctx context.Context) error {
	active, err := j.alerts.ListActive()
	if err != nil {
		return errors.Wrap(err, "failed to load active alerts")
	}

	groups := groupAlerts(active)
	j.logger.Info().
		Int("alerts", len(active)).
		Int("groups", len(groups)).
		Msg("starting alert scan pass")

	for _, g := range sortedGroups(groups) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.runGroup(ctx, g, groups[g]); err != nil {
			j.logger.Error().
				Err(err).
				Str("channel", g.ChannelID).
				Str("chain", g.Chain).
				Str("client_type", string(g.ClientType)).
				Msg("group scan failed, will retry next pass")
		}
	}
	return nil
}

// runGroup scans one group's chain and evaluates its alerts. The watermark
// advances only after the scan and its notifications have completed.
func (j *Job) runGroup(ctx context.Context, g group, alerts []store.Alert) error {
	gateway, err := j.gateways(g.Chain)
	if err != nil {
		return fmt.Errorf("failed to resolve gateway: %w", err)
	}

	head, err := gateway.HeadBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch head block: %w", err)
	}

	scan, fromBlock, toBlock, err := j.cursor.ShouldScan(g.Chain, head)
	if err != nil {
		return err
	}
	if !scan {
		j.logger.Debug().
			Str("chain", g.Chain).
			Uint64("head", head).
			Msg("no new blocks to process")
		return nil
	}

	sends, err := gateway.FilterChannelEvents(ctx, evm.EventKindSend, g.ClientType, g.ChannelID, fromBlock, toBlock)
	if err != nil {
		return err
	}

	if len(sends) > 0 {
		acks, err := gateway.FilterChannelEvents(ctx, evm.EventKindAck, g.ClientType, g.ChannelID, fromBlock, toBlock)
		if err != nil {
			return err
		}

		correlator := packet.NewCorrelator(gateway.BlockTimestamp, j.concurrency, j.logger)
		packets, err := correlator.Correlate(ctx, sends, acks)
		if err != nil {
			return err
		}

		j.logger.Info().
			Str("channel", g.ChannelID).
			Str("chain", g.Chain).
			Int("packets", len(packets)).
			Uint64("from", fromBlock).
			Uint64("to", toBlock).
			Msg("correlated packets")

		j.notifyRecipients(ctx, g, alert.Evaluate(alerts, packets))
	}

	// The watermark advances even when nothing fired, so the next pass
	// starts after this window
	if err := j.cursor.Advance(g.Chain, toBlock); err != nil {
		return err
	}
	return nil
}

// notifyRecipients sends one email per recipient and appends one audit row
// per fired alert id. A recipient's delivery failure never blocks the rest.
func (j *Job) notifyRecipients(ctx context.Context, g group, notifications map[string]*alert.Notification) {
	for _, email := range sortedRecipients(notifications) {
		n := notifications[email]
		subject := notify.AlertSubject(g.ChannelID)
		body := notify.AlertBody(g.ChannelID, g.Chain, n, j.dashboardURL)

		if err := j.notifier.Send(ctx, email, subject, body); err != nil {
			j.logger.Error().
				Err(err).
				Str("recipient", email).
				Msg("failed to send notification")
			continue
		}

		for _, alertID := range n.AlertIDs {
			if err := j.sentAlerts.Append(alertID, email); err != nil {
				j.logger.Error().
					Err(err).
					Uint("alert_id", alertID).
					Str("recipient", email).
					Msg("failed to record sent alert")
			}
		}
	}
}

func groupAlerts(alerts []store.Alert) map[group][]store.Alert {
	groups := make(map[group][]store.Alert)
	for _, a := range alerts {
		g := group{
			ChannelID:  a.ChannelID,
			Chain:      a.Chain,
			ClientType: config.ClientType(a.ClientType),
		}
		groups[g] = append(groups[g], a)
	}
	return groups
}

func sortedGroups(groups map[group][]store.Alert) []group {
	keys := make([]group, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Chain != b.Chain {
			return a.Chain < b.Chain
		}
		if a.ChannelID != b.ChannelID {
			return a.ChannelID < b.ChannelID
		}
		return a.ClientType < b.ClientType
	})
	return keys
}

func sortedRecipients(notifications map[string]*alert.Notification) []string {
	emails := make([]string, 0, len(notifications))
	for email := range notifications {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}
