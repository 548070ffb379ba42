package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-ibc/polylens/store"
)

func TestOpenInMemoryDB(t *testing.T) {
	database, err := OpenInMemoryDB(true)
	require.NoError(t, err)
	defer database.Close()

	t.Run("schema models are migrated", func(t *testing.T) {
		for _, model := range []any{&store.Alert{}, &store.ProcessedBlock{}, &store.SentAlert{}} {
			assert.True(t, database.Client().Migrator().HasTable(model))
		}
	})

	t.Run("rows can be written and read", func(t *testing.T) {
		alert := store.Alert{
			ChannelID:  "channel-17",
			Chain:      "base",
			ClientType: "proof",
			Threshold:  30,
			UserEmail:  "user@example.com",
		}
		require.NoError(t, database.Client().Create(&alert).Error)

		var got store.Alert
		require.NoError(t, database.Client().First(&got, alert.ID).Error)
		assert.Equal(t, "channel-17", got.ChannelID)
	})
}

func TestOpenInMemoryDBWithoutMigration(t *testing.T) {
	database, err := OpenInMemoryDB(false)
	require.NoError(t, err)
	defer database.Close()

	assert.False(t, database.Client().Migrator().HasTable(&store.Alert{}))
}

func TestOpenFileDB(t *testing.T) {
	t.Run("creates the directory and database file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")

		database, err := OpenFileDB(dir, "polylens.db", true)
		require.NoError(t, err)
		defer database.Close()

		_, err = os.Stat(filepath.Join(dir, "polylens.db"))
		assert.NoError(t, err)
	})

	t.Run("state survives reopening", func(t *testing.T) {
		dir := t.TempDir()

		database, err := OpenFileDB(dir, "polylens.db", true)
		require.NoError(t, err)
		require.NoError(t, database.Client().Create(&store.ProcessedBlock{Chain: "base", BlockNumber: 42}).Error)
		require.NoError(t, database.Close())

		reopened, err := OpenFileDB(dir, "polylens.db", true)
		require.NoError(t, err)
		defer reopened.Close()

		var processed store.ProcessedBlock
		require.NoError(t, reopened.Client().Where("chain = ?", "base").First(&processed).Error)
		assert.Equal(t, uint64(42), processed.BlockNumber)
	})
}

func TestClose(t *testing.T) {
	database, err := OpenInMemoryDB(true)
	require.NoError(t, err)
	assert.NoError(t, database.Close())
}
