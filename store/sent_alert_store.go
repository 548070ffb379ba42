package store

import (
	"fmt"

	"gorm.io/gorm"
)

// SentAlertStore appends audit rows for dispatched notifications.
type SentAlertStore struct {
	database *gorm.DB
}

// NewSentAlertStore creates a new sent-alert store.
func NewSentAlertStore(database *gorm.DB) *SentAlertStore {
	return &SentAlertStore{database: database}
}

// Append records that one alert fired for one recipient in this scan pass.
func (ss *SentAlertStore) Append(alertID uint, recipient string) error {
	if ss.database == nil {
		return fmt.Errorf("database is nil")
	}

	record := SentAlert{
		AlertID:   alertID,
		Recipient: recipient,
	}
	if err := ss.database.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append sent alert: %w", err)
	}
	return nil
}

// ListByAlert returns the audit rows for one alert, oldest first.
func (ss *SentAlertStore) ListByAlert(alertID uint) ([]SentAlert, error) {
	if ss.database == nil {
		return nil, fmt.Errorf("database is nil")
	}

	var records []SentAlert
	if err := ss.database.
		Where("alert_id = ?", alertID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list sent alerts: %w", err)
	}
	return records, nil
}
