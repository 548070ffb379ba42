package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BlockCursor tracks the per-chain last-scanned-block watermark and decides
// whether a new scan window exists.
type BlockCursor struct {
	database *gorm.DB
}

// NewBlockCursor creates a new block cursor.
func NewBlockCursor(database *gorm.DB) *BlockCursor {
	return &BlockCursor{database: database}
}

// ShouldScan compares the chain's current head against the stored watermark.
// Scanning triggers only when head is strictly greater than the watermark; a
// missing watermark means the chain was never scanned and the window starts
// from genesis (from = 0).
func (bc *BlockCursor) ShouldScan(chain string, head uint64) (scan bool, from, to uint64, err error) {
	if bc.database == nil {
		return false, 0, 0, fmt.Errorf("database is nil")
	}

	var processed ProcessedBlock
	result := bc.database.Where("chain = ?", chain).First(&processed)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return true, 0, head, nil
		}
		return false, 0, 0, fmt.Errorf("failed to query processed block: %w", result.Error)
	}

	if head > processed.BlockNumber {
		return true, processed.BlockNumber, head, nil
	}
	return false, 0, 0, nil
}

// Advance upserts the chain's watermark to the given block. The watermark
// only moves forward; a lower value is ignored.
func (bc *BlockCursor) Advance(chain string, block uint64) error {
	if bc.database == nil {
		return fmt.Errorf("database is nil")
	}

	var processed ProcessedBlock
	result := bc.database.Where("chain = ?", chain).First(&processed)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			processed = ProcessedBlock{
				Chain:       chain,
				BlockNumber: block,
			}
			if err := bc.database.Create(&processed).Error; err != nil {
				return fmt.Errorf("failed to create processed block: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to query processed block: %w", result.Error)
	}

	if block > processed.BlockNumber {
		processed.BlockNumber = block
		if err := bc.database.Save(&processed).Error; err != nil {
			return fmt.Errorf("failed to advance processed block: %w", err)
		}
	}
	return nil
}

// Watermark returns the stored watermark for a chain, with found=false when
// the chain was never scanned.
func (bc *BlockCursor) Watermark(chain string) (block uint64, found bool, err error) {
	if bc.database == nil {
		return 0, false, fmt.Errorf("database is nil")
	}

	var processed ProcessedBlock
	result := bc.database.Where("chain = ?", chain).First(&processed)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to query processed block: %w", result.Error)
	}
	return processed.BlockNumber, true, nil
}
