// Package store contains the GORM models and data-access types for the
// monitor's durable state.
//
// Three tables back the monitor:
//
//	alerts           user-registered latency thresholds (soft-deleted)
//	processed_blocks per-chain last-scanned-block watermarks
//	sent_alerts      append-only audit of dispatched notifications
package store

import (
	"gorm.io/gorm"
)

// Alert is a user's standing watch on one (channel, chain, clientType)
// triple. Removal is a soft delete so alert history survives.
type Alert struct {
	gorm.Model
	ChannelID  string `gorm:"index:idx_alert_group"` // Observed channel id
	Chain      string `gorm:"index:idx_alert_group"` // Chain registry name
	ClientType string `gorm:"index:idx_alert_group"` // "sim" or "proof"
	Threshold  uint64 // Latency ceiling in seconds
	UserEmail  string `gorm:"index"` // Notification recipient and owner
}

// ProcessedBlock tracks the highest block already scanned for a chain.
// One row per chain; the block number never moves backward.
type ProcessedBlock struct {
	gorm.Model
	Chain       string `gorm:"uniqueIndex"`
	BlockNumber uint64
}

// SentAlert records one notification sent for one alert in one scan pass.
// Audit only; it is never consulted to suppress future sends.
type SentAlert struct {
	gorm.Model
	AlertID   uint   `gorm:"index"`
	Recipient string `gorm:"index"`
}
