package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// MaxActiveAlertsPerUser caps how many non-deleted alerts one user may hold.
const MaxActiveAlertsPerUser = 3

// ErrTooManyAlerts is returned when creating an alert would exceed the
// per-user cap.
var ErrTooManyAlerts = errors.New("user cannot have more than 3 alerts")

// ErrAlertNotFound is returned when soft-deleting an alert that does not
// exist or was already removed.
var ErrAlertNotFound = errors.New("alert not found")

// AlertStore provides database operations for alerts.
type AlertStore struct {
	database *gorm.DB
}

// NewAlertStore creates a new alert store.
func NewAlertStore(database *gorm.DB) *AlertStore {
	return &AlertStore{database: database}
}

// Create validates and persists a new alert, enforcing the per-user cap.
// The count and insert run in one transaction so two concurrent creates
// cannot both slip under the cap.
func (as *AlertStore) Create(alert *Alert) error {
	if as.database == nil {
		return fmt.Errorf("database is nil")
	}
	if err := validateAlert(alert); err != nil {
		return err
	}

	return as.database.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&Alert{}).
			Where("user_email = ?", alert.UserEmail).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to count active alerts: %w", err)
		}
		if active >= MaxActiveAlertsPerUser {
			return ErrTooManyAlerts
		}

		if err := tx.Create(alert).Error; err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
		return nil
	})
}

// SoftDelete tombstones an alert by id.
func (as *AlertStore) SoftDelete(id uint) error {
	if as.database == nil {
		return fmt.Errorf("database is nil")
	}

	result := as.database.Delete(&Alert{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete alert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// ListActive returns every non-deleted alert, oldest first.
func (as *AlertStore) ListActive() ([]Alert, error) {
	if as.database == nil {
		return nil, fmt.Errorf("database is nil")
	}

	var alerts []Alert
	if err := as.database.Order("id ASC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// ListActiveByUser returns a user's non-deleted alerts, oldest first.
func (as *AlertStore) ListActiveByUser(email string) ([]Alert, error) {
	if as.database == nil {
		return nil, fmt.Errorf("database is nil")
	}

	var alerts []Alert
	if err := as.database.
		Where("user_email = ?", email).
		Order("id ASC").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts for user: %w", err)
	}
	return alerts, nil
}

func validateAlert(alert *Alert) error {
	if alert == nil {
		return fmt.Errorf("alert is nil")
	}
	if strings.TrimSpace(alert.UserEmail) == "" {
		return fmt.Errorf("alert has no recipient email")
	}
	if alert.ChannelID == "" {
		return fmt.Errorf("alert has no channel id")
	}
	if alert.Chain == "" {
		return fmt.Errorf("alert has no chain")
	}
	if alert.ClientType != "sim" && alert.ClientType != "proof" {
		return fmt.Errorf("invalid client type %q (want 'sim' or 'proof')", alert.ClientType)
	}
	if alert.Threshold == 0 {
		return fmt.Errorf("alert threshold must be positive")
	}
	return nil
}
