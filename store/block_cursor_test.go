package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockCursorShouldScan(t *testing.T) {
	t.Run("missing watermark means scan from genesis", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))

		scan, from, to, err := bc.ShouldScan("base", 500)
		require.NoError(t, err)
		assert.True(t, scan)
		assert.Equal(t, uint64(0), from)
		assert.Equal(t, uint64(500), to)
	})

	t.Run("head equal to watermark does not scan", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))
		require.NoError(t, bc.Advance("base", 500))

		scan, _, _, err := bc.ShouldScan("base", 500)
		require.NoError(t, err)
		assert.False(t, scan)
	})

	t.Run("head below watermark does not scan", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))
		require.NoError(t, bc.Advance("base", 500))

		scan, _, _, err := bc.ShouldScan("base", 400)
		require.NoError(t, err)
		assert.False(t, scan)
	})

	t.Run("head above watermark scans from the watermark", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))
		require.NoError(t, bc.Advance("base", 500))

		scan, from, to, err := bc.ShouldScan("base", 600)
		require.NoError(t, err)
		assert.True(t, scan)
		assert.Equal(t, uint64(500), from)
		assert.Equal(t, uint64(600), to)
	})

	t.Run("watermarks are per chain", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))
		require.NoError(t, bc.Advance("base", 500))

		scan, from, _, err := bc.ShouldScan("optimism", 100)
		require.NoError(t, err)
		assert.True(t, scan)
		assert.Equal(t, uint64(0), from)
	})

	t.Run("returns error for nil database", func(t *testing.T) {
		bc := NewBlockCursor(nil)
		_, _, _, err := bc.ShouldScan("base", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is nil")
	})
}

func TestBlockCursorAdvance(t *testing.T) {
	t.Run("creates the watermark on first advance", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))

		require.NoError(t, bc.Advance("base", 500))
		block, found, err := bc.Watermark("base")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, uint64(500), block)
	})

	t.Run("never moves backward", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))

		require.NoError(t, bc.Advance("base", 500))
		require.NoError(t, bc.Advance("base", 400))

		block, _, err := bc.Watermark("base")
		require.NoError(t, err)
		assert.Equal(t, uint64(500), block)
	})

	t.Run("moves forward", func(t *testing.T) {
		bc := NewBlockCursor(testDB(t))

		require.NoError(t, bc.Advance("base", 500))
		require.NoError(t, bc.Advance("base", 600))

		block, _, err := bc.Watermark("base")
		require.NoError(t, err)
		assert.Equal(t, uint64(600), block)
	})
}

func TestSentAlertStore(t *testing.T) {
	t.Run("appends audit rows", func(t *testing.T) {
		ss := NewSentAlertStore(testDB(t))

		require.NoError(t, ss.Append(7, "user@example.com"))
		require.NoError(t, ss.Append(7, "user@example.com"))

		rows, err := ss.ListByAlert(7)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "user@example.com", rows[0].Recipient)
		assert.False(t, rows[0].CreatedAt.IsZero())
	})

	t.Run("returns error for nil database", func(t *testing.T) {
		ss := NewSentAlertStore(nil)
		require.Error(t, ss.Append(1, "user@example.com"))
	})
}
