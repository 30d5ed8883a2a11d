package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence/models"
)

// GormNumberGenerator issues PREFIX+YYYY+MM+NNNN numbers from a counter row per
// prefix and month. Incrementing the row takes a row lock, so concurrent
// callers are serialized; the unique index on the numbered column still
// rejects anything that slips through.
type GormNumberGenerator struct {
	db     *gorm.DB
	prefix string
	table  string
	column string
}

// NewGormNumberGenerator creates a generator for numbers stored in table.column
func NewGormNumberGenerator(db *gorm.DB, prefix, table, column string) *GormNumberGenerator {
	return &GormNumberGenerator{db: db, prefix: prefix, table: table, column: column}
}

// NewInquiryNumberGenerator numbers inquiries
func NewInquiryNumberGenerator(db *gorm.DB, prefix string) *GormNumberGenerator {
	return NewGormNumberGenerator(db, prefix, "inquiries", "inquiry_number")
}

// NewOrderNumberGenerator numbers orders
func NewOrderNumberGenerator(db *gorm.DB, prefix string) *GormNumberGenerator {
	return NewGormNumberGenerator(db, prefix, "orders", "order_number")
}

// Next returns the next number for the month containing at
func (g *GormNumberGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	period := shared.SequencePeriod(g.prefix, at)
	var next int
	err := inTx(ctx, g.db, func(tx *gorm.DB) error {
		if err := g.ensureCounter(tx, period); err != nil {
			return err
		}
		res := tx.Model(&models.NumberSequenceModel{}).
			Where("seq_key = ?", period).
			UpdateColumn("last_value", gorm.Expr("last_value + 1"))
		if res.Error != nil {
			return res.Error
		}
		var row models.NumberSequenceModel
		if err := tx.Where("seq_key = ?", period).First(&row).Error; err != nil {
			return err
		}
		next = row.LastValue
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("allocate %s number: %w", g.prefix, err)
	}
	return shared.FormatSequenceNumber(g.prefix, at, int64(next)), nil
}

// Resync raises the month's counter to the highest number already stored.
// A collision means the counter is behind, and retrying without this would
// hand out the same number again.
func (g *GormNumberGenerator) Resync(ctx context.Context, at time.Time) error {
	period := shared.SequencePeriod(g.prefix, at)
	err := inTx(ctx, g.db, func(tx *gorm.DB) error {
		if err := g.ensureCounter(tx, period); err != nil {
			return err
		}
		issued, err := g.issuedSoFar(tx, period)
		if err != nil {
			return err
		}
		return tx.Model(&models.NumberSequenceModel{}).
			Where("seq_key = ? AND last_value < ?", period, issued).
			UpdateColumn("last_value", issued).Error
	})
	if err != nil {
		return fmt.Errorf("resync %s numbers: %w", g.prefix, err)
	}
	return nil
}

// ensureCounter creates the month's counter row, seeded from the numbers
// already stored, when it does not exist yet
func (g *GormNumberGenerator) ensureCounter(tx *gorm.DB, period string) error {
	var n int64
	if err := tx.Model(&models.NumberSequenceModel{}).Where("seq_key = ?", period).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seed, err := g.issuedSoFar(tx, period)
	if err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.NumberSequenceModel{SeqKey: period, LastValue: seed}).Error
}

// issuedSoFar is max(count of the month's numbers, highest suffix)
func (g *GormNumberGenerator) issuedSoFar(tx *gorm.DB, period string) (int, error) {
	var numbers []string
	if err := tx.Table(g.table).
		Where(g.column+" LIKE ?", period+"%").
		Pluck(g.column, &numbers).Error; err != nil {
		return 0, err
	}
	highest := len(numbers)
	for _, number := range numbers {
		if v, err := strconv.Atoi(strings.TrimPrefix(number, period)); err == nil && v > highest {
			highest = v
		}
	}
	return highest, nil
}

var (
	_ shared.NumberGenerator = (*GormNumberGenerator)(nil)
	_ shared.NumberResyncer  = (*GormNumberGenerator)(nil)
)
