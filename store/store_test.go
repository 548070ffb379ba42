package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDB opens an in-memory SQLite database with the store schema migrated.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&Alert{}, &ProcessedBlock{}, &SentAlert{}))
	return database
}

func validAlert(email string) *Alert {
	return &Alert{
		ChannelID:  "channel-17",
		Chain:      "base",
		ClientType: "proof",
		Threshold:  30,
		UserEmail:  email,
	}
}
