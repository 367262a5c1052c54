package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyEntry is one day of reported meal consumption for a school.
//
// The running balances are stored redundantly: they are derivable from the
// entries before this one, but reports read them far more often than
// entries change.
type DailyEntry struct {
	DefaultModel
	School   School    `json:"-"`
	SchoolID uuid.UUID `gorm:"uniqueIndex:daily_entry_school_date"`
	Date     time.Time `gorm:"uniqueIndex:daily_entry_school_date"`

	ServedPrimary int64
	ServedMiddle  int64

	// Derived via the ledger from the served counts
	RiceConsumedPrimary decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RiceConsumedMiddle  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	AmountPrimary       decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	AmountMiddle        decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	// Running balance chain, per section. The opening balance of an entry
	// equals the remaining balance of the previous entry of the month.
	OpeningBalancePrimary   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	OpeningBalanceMiddle    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RemainingBalancePrimary decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RemainingBalanceMiddle  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	TotalStudents    int64
	TotalAmount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	CumulativeAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Month-to-date amount including this entry

	Remarks string
}

var (
	ErrEntryDateNotUnique = errors.New("there already is an entry for this school and date")
	ErrEntryDateInFuture  = errors.New("entries cannot be created for future dates")
	ErrNoMonthConfig      = errors.New("the month must be configured before entries can be recorded")
	ErrServedNegative     = errors.New("served student counts must not be negative")
	ErrRemarksTooLong     = errors.New("remarks must not be longer than 500 characters")
	ErrCascadeFailed      = errors.New("recomputing the month's running balances failed")
)

// BeforeSave validates the raw inputs and normalizes the date to UTC
// midnight so that the per-date uniqueness is independent of submission
// time.
func (e *DailyEntry) BeforeSave(_ *gorm.DB) error {
	e.Remarks = strings.TrimSpace(e.Remarks)
	e.Date = normalizeDate(e.Date)

	if e.ServedPrimary < 0 || e.ServedMiddle < 0 {
		return ErrServedNegative
	}

	if utf8.RuneCountInString(e.Remarks) > 500 {
		return ErrRemarksTooLong
	}

	return nil
}

func normalizeDate(t time.Time) time.Time {
	year, month, day := t.In(time.UTC).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// configForDate returns the month configuration owning a date.
func configForDate(db *gorm.DB, schoolID uuid.UUID, date time.Time) (MonthConfig, error) {
	var config MonthConfig

	err := db.
		Where("school_id = ? AND month = ?", schoolID, types.MonthOf(date)).
		First(&config).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return MonthConfig{}, ErrNoMonthConfig
		}

		return MonthConfig{}, err
	}

	return config, nil
}

// checkSections verifies that students are only reported for sections the
// school actually has.
func (e DailyEntry) checkSections(db *gorm.DB) error {
	var school School
	err := db.First(&school, e.SchoolID).Error
	if err != nil {
		return err
	}

	if e.ServedPrimary > 0 && !school.NeedsPrimary() {
		return ErrSectionNotActive
	}

	if e.ServedMiddle > 0 && !school.NeedsMiddle() {
		return ErrSectionNotActive
	}

	return nil
}

// CreateDailyEntry validates and persists a new daily entry and brings the
// whole month back into balance.
func CreateDailyEntry(entry *DailyEntry, rates ledger.RiceRates) error {
	entry.Date = normalizeDate(entry.Date)

	if entry.Date.After(normalizeDate(time.Now())) {
		return ErrEntryDateInFuture
	}

	config, err := configForDate(DB, entry.SchoolID, entry.Date)
	if err != nil {
		return err
	}

	if config.Immutable() {
		return ErrMonthLocked
	}

	if err := entry.checkSections(DB); err != nil {
		return err
	}

	var count int64
	err = DB.Model(&DailyEntry{}).
		Where("school_id = ? AND date = ?", entry.SchoolID, entry.Date).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEntryDateNotUnique
	}

	entry.RiceConsumedPrimary = ledger.RiceConsumption(entry.ServedPrimary, rates.Primary)
	entry.RiceConsumedMiddle = ledger.RiceConsumption(entry.ServedMiddle, rates.Middle)

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		if err := recomputeMonth(tx, &config); err != nil {
			return err
		}

		// Return the stored computed values to the caller
		return tx.First(entry, entry.ID).Error
	})
}

// UpdateDailyEntry changes the served counts or remarks of an entry.
//
// The date of an entry is immutable. Changing the consumption of one day
// invalidates the running balances of every later entry of the month, so
// the forward cascade is recomputed in the same transaction.
func UpdateDailyEntry(entry *DailyEntry, servedPrimary, servedMiddle int64, remarks string, rates ledger.RiceRates) error {
	config, err := configForDate(DB, entry.SchoolID, entry.Date)
	if err != nil {
		return err
	}

	if config.Immutable() {
		return ErrMonthLocked
	}

	entry.ServedPrimary = servedPrimary
	entry.ServedMiddle = servedMiddle
	entry.Remarks = remarks

	if err := entry.checkSections(DB); err != nil {
		return err
	}

	entry.RiceConsumedPrimary = ledger.RiceConsumption(servedPrimary, rates.Primary)
	entry.RiceConsumedMiddle = ledger.RiceConsumption(servedMiddle, rates.Middle)

	return DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(entry).
			Select("ServedPrimary", "ServedMiddle", "Remarks", "RiceConsumedPrimary", "RiceConsumedMiddle").
			Updates(*entry).Error
		if err != nil {
			return err
		}

		if err := recomputeMonth(tx, &config); err != nil {
			return err
		}

		return tx.First(entry, entry.ID).Error
	})
}

// DeleteDailyEntry removes an entry and recomputes the remaining entries
// of the month.
//
// Entries are removed permanently. A soft-deleted row would still occupy
// the (school, date) slot and block re-submission for that day.
func DeleteDailyEntry(entry *DailyEntry) error {
	config, err := configForDate(DB, entry.SchoolID, entry.Date)
	if err != nil {
		return err
	}

	if config.Immutable() {
		return ErrMonthLocked
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(entry).Error; err != nil {
			return err
		}

		return recomputeMonth(tx, &config)
	})
}

// EntriesForMonth returns all entries of a school for one month in date
// order.
func EntriesForMonth(db *gorm.DB, schoolID uuid.UUID, month types.Month) ([]DailyEntry, error) {
	var entries []DailyEntry

	err := db.
		Where("school_id = ? AND date >= ? AND date <= ?", schoolID, month.FirstDay(), month.LastDay()).
		Order("date ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// recomputeMonth recalculates the running balance chain and the derived
// amounts for every entry of the configuration's month, then resyncs the
// consumed totals on the configuration itself.
//
// The month's entries are loaded once, recomputed in memory and persisted
// as a batch so the operation is atomic within the caller's transaction.
// The chain is seeded with the month's available opening stock, which
// includes all lifted and arranged rice.
func recomputeMonth(tx *gorm.DB, config *MonthConfig) error {
	entries, err := EntriesForMonth(tx, config.SchoolID, config.Month)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCascadeFailed, err)
	}

	availablePrimary := config.OpeningBalancePrimary.
		Add(config.RiceLiftedPrimary).
		Add(config.RiceArrangedPrimary)
	availableMiddle := config.OpeningBalanceMiddle.
		Add(config.RiceLiftedMiddle).
		Add(config.RiceArrangedMiddle)

	cumulativeAmount := decimal.Zero
	consumedRicePrimary := decimal.Zero
	consumedRiceMiddle := decimal.Zero
	consumedAmountPrimary := decimal.Zero
	consumedAmountMiddle := decimal.Zero

	for i := range entries {
		entry := &entries[i]

		entry.AmountPrimary = ledger.AmountConsumption(entry.ServedPrimary, config.Rates(ledger.SectionPrimary)).Total
		entry.AmountMiddle = ledger.AmountConsumption(entry.ServedMiddle, config.Rates(ledger.SectionMiddle)).Total
		entry.TotalAmount = entry.AmountPrimary.Add(entry.AmountMiddle)
		entry.TotalStudents = entry.ServedPrimary + entry.ServedMiddle

		entry.OpeningBalancePrimary = availablePrimary
		entry.RemainingBalancePrimary = availablePrimary.Sub(entry.RiceConsumedPrimary)
		availablePrimary = entry.RemainingBalancePrimary

		entry.OpeningBalanceMiddle = availableMiddle
		entry.RemainingBalanceMiddle = availableMiddle.Sub(entry.RiceConsumedMiddle)
		availableMiddle = entry.RemainingBalanceMiddle

		cumulativeAmount = cumulativeAmount.Add(entry.TotalAmount)
		entry.CumulativeAmount = cumulativeAmount

		consumedRicePrimary = consumedRicePrimary.Add(entry.RiceConsumedPrimary)
		consumedRiceMiddle = consumedRiceMiddle.Add(entry.RiceConsumedMiddle)
		consumedAmountPrimary = consumedAmountPrimary.Add(entry.AmountPrimary)
		consumedAmountMiddle = consumedAmountMiddle.Add(entry.AmountMiddle)

		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("%w: %s", ErrCascadeFailed, err)
		}
	}

	// Keep the configuration's derived consumption in sync. This is the
	// only place these fields are written, so re-running it is idempotent.
	config.ConsumedRicePrimary = consumedRicePrimary
	config.ConsumedRiceMiddle = consumedRiceMiddle
	config.ConsumedAmountPrimary = consumedAmountPrimary
	config.ConsumedAmountMiddle = consumedAmountMiddle

	err = tx.Model(config).
		Select("ConsumedRicePrimary", "ConsumedRiceMiddle", "ConsumedAmountPrimary", "ConsumedAmountMiddle").
		Updates(*config).Error
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCascadeFailed, err)
	}

	return nil
}
