package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SectionRates holds the daily per-student ingredient cost for one section.
type SectionRates struct {
	Pulses     decimal.Decimal `json:"pulses" gorm:"type:DECIMAL(20,8)" example:"1.21"`
	Vegetables decimal.Decimal `json:"vegetables" gorm:"type:DECIMAL(20,8)" example:"1.50"`
	Oil        decimal.Decimal `json:"oil" gorm:"type:DECIMAL(20,8)" example:"0.51"`
	Salt       decimal.Decimal `json:"salt" gorm:"type:DECIMAL(20,8)" example:"0.20"`
	Fuel       decimal.Decimal `json:"fuel" gorm:"type:DECIMAL(20,8)" example:"0.40"`
}

// IngredientRates converts the stored rates into the ledger representation.
func (r SectionRates) IngredientRates() ledger.IngredientRates {
	return ledger.IngredientRates{
		Pulses:     r.Pulses,
		Vegetables: r.Vegetables,
		Oil:        r.Oil,
		Salt:       r.Salt,
		Fuel:       r.Fuel,
	}
}

func (r SectionRates) total() decimal.Decimal {
	return r.Pulses.Add(r.Vegetables).Add(r.Oil).Add(r.Salt).Add(r.Fuel)
}

func (r SectionRates) anyNegative() bool {
	for _, v := range []decimal.Decimal{r.Pulses, r.Vegetables, r.Oil, r.Salt, r.Fuel} {
		if v.IsNegative() {
			return true
		}
	}

	return false
}

// CondimentSplit is the percentage breakdown of the salt rate into the
// individual condiments. The five percentages must sum to 100.
type CondimentSplit struct {
	Common    decimal.Decimal `json:"common" gorm:"type:DECIMAL(20,8)" example:"5"`
	Chilli    decimal.Decimal `json:"chilli" gorm:"type:DECIMAL(20,8)" example:"35"`
	Turmeric  decimal.Decimal `json:"turmeric" gorm:"type:DECIMAL(20,8)" example:"25"`
	Coriander decimal.Decimal `json:"coriander" gorm:"type:DECIMAL(20,8)" example:"15"`
	Other     decimal.Decimal `json:"other" gorm:"type:DECIMAL(20,8)" example:"20"`
}

// Sum returns the sum of all five percentages.
func (c CondimentSplit) Sum() decimal.Decimal {
	return c.Common.Add(c.Chilli).Add(c.Turmeric).Add(c.Coriander).Add(c.Other)
}

// Valid reports whether the split sums to 100 within a 0.01 tolerance.
func (c CondimentSplit) Valid() bool {
	diff := c.Sum().Sub(decimal.NewFromInt(100)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(0.01))
}

// MonthConfig is the rice and amount configuration of one school for one
// calendar month.
type MonthConfig struct {
	DefaultModel
	School   School      `json:"-"`
	SchoolID uuid.UUID   `gorm:"uniqueIndex:month_config_school_month"`
	Month    types.Month `gorm:"uniqueIndex:month_config_school_month"`
	Note     string

	RatesPrimary SectionRates   `gorm:"embedded;embeddedPrefix:rates_primary_"`
	RatesMiddle  SectionRates   `gorm:"embedded;embeddedPrefix:rates_middle_"`
	Condiments   CondimentSplit `gorm:"embedded;embeddedPrefix:condiment_"`

	// Opening balances may be negative when a deficit is carried over
	// from the previous month.
	OpeningBalancePrimary decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	OpeningBalanceMiddle  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	// Cumulative stock additions for the month in kg
	RiceLiftedPrimary   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RiceLiftedMiddle    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RiceArrangedPrimary decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	RiceArrangedMiddle  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	// Derived from the daily entries, stored for fast reads
	ConsumedRicePrimary   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	ConsumedRiceMiddle    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	ConsumedAmountPrimary decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	ConsumedAmountMiddle  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`

	Locked    bool
	Completed bool
}

var (
	ErrMonthConfigExists = errors.New("a configuration for this school and month already exists")
	ErrInvalidRates      = errors.New("the configured rates are invalid")
	ErrMonthOutOfRange   = errors.New("the year of the month must be between 2020 and 2100")
	ErrMonthLocked       = errors.New("this month is locked and does not accept changes to its entries")
	ErrMonthCompleted    = errors.New("this month has been completed and is immutable")
)

// StockStatus is the warning signal derived from a closing balance.
type StockStatus string

const (
	StockOK           StockStatus = "ok"
	StockLow          StockStatus = "low"
	StockInsufficient StockStatus = "insufficient"
)

// LowStockThreshold returns the closing balance in kg below which a section
// is flagged as low on stock.
func LowStockThreshold() decimal.Decimal {
	raw, ok := os.LookupEnv("LOW_STOCK_THRESHOLD_KG")
	if ok {
		if threshold, err := decimal.NewFromString(raw); err == nil {
			return threshold
		}
	}

	return decimal.NewFromInt(10)
}

// BeforeSave validates the configuration and trims whitespace.
func (m *MonthConfig) BeforeSave(_ *gorm.DB) error {
	m.Note = strings.TrimSpace(m.Note)

	year := time.Time(m.Month).Year()
	if year < 2020 || year > 2100 {
		return ErrMonthOutOfRange
	}

	if m.RatesPrimary.anyNegative() || m.RatesMiddle.anyNegative() {
		return fmt.Errorf("%w: ingredient rates must not be negative", ErrInvalidRates)
	}

	if !m.Condiments.Valid() {
		return fmt.Errorf("%w: the condiment percentages sum to %s, they must sum to 100", ErrInvalidRates, m.Condiments.Sum())
	}

	if m.RiceLiftedPrimary.IsNegative() || m.RiceLiftedMiddle.IsNegative() ||
		m.RiceArrangedPrimary.IsNegative() || m.RiceArrangedMiddle.IsNegative() {
		return fmt.Errorf("%w: cumulative rice additions must not be negative", ErrInvalidRates)
	}

	return nil
}

// BeforeCreate verifies the referenced school and that the required rates
// for its active sections are configured.
func (m *MonthConfig) BeforeCreate(tx *gorm.DB) error {
	_ = m.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*MonthConfig)

	var school School
	err := tx.First(&school, toSave.SchoolID).Error
	if err != nil {
		return err
	}

	if school.NeedsPrimary() && toSave.RatesPrimary.total().IsZero() {
		return fmt.Errorf("%w: rates for the primary section are required", ErrInvalidRates)
	}

	if school.NeedsMiddle() && toSave.RatesMiddle.total().IsZero() {
		return fmt.Errorf("%w: rates for the middle section are required", ErrInvalidRates)
	}

	return nil
}

// ClosingBalancePrimary returns the closing rice balance for the primary
// section. It may be negative, see StockStatusPrimary.
func (m MonthConfig) ClosingBalancePrimary() decimal.Decimal {
	return m.OpeningBalancePrimary.
		Add(m.RiceLiftedPrimary).
		Add(m.RiceArrangedPrimary).
		Sub(m.ConsumedRicePrimary)
}

// ClosingBalanceMiddle returns the closing rice balance for the middle
// section.
func (m MonthConfig) ClosingBalanceMiddle() decimal.Decimal {
	return m.OpeningBalanceMiddle.
		Add(m.RiceLiftedMiddle).
		Add(m.RiceArrangedMiddle).
		Sub(m.ConsumedRiceMiddle)
}

// ClosingBalance returns the closing balance for a section.
func (m MonthConfig) ClosingBalance(section ledger.Section) decimal.Decimal {
	if section == ledger.SectionMiddle {
		return m.ClosingBalanceMiddle()
	}

	return m.ClosingBalancePrimary()
}

// StockStatus returns the warning signal for a section's closing balance.
func (m MonthConfig) StockStatus(section ledger.Section, threshold decimal.Decimal) StockStatus {
	closing := m.ClosingBalance(section)

	if closing.IsNegative() {
		return StockInsufficient
	}

	if closing.LessThan(threshold) {
		return StockLow
	}

	return StockOK
}

// Rates returns the ingredient rates for a section.
func (m MonthConfig) Rates(section ledger.Section) ledger.IngredientRates {
	if section == ledger.SectionMiddle {
		return m.RatesMiddle.IngredientRates()
	}

	return m.RatesPrimary.IngredientRates()
}

// ToggleLock flips the lock state of the month.
//
// Locking prevents entry mutation, it does not prevent stock additions.
// Completed months cannot be unlocked.
func (m *MonthConfig) ToggleLock(db *gorm.DB) error {
	if m.Completed {
		return ErrMonthCompleted
	}

	m.Locked = !m.Locked
	return db.Model(m).Select("Locked").Updates(*m).Error
}

// Immutable reports whether the month rejects entry mutation.
func (m MonthConfig) Immutable() bool {
	return m.Locked || m.Completed
}

// UpdateMonthConfig persists changes to a month's rates, note or opening
// balances and brings the entries' derived amounts back in line with the
// new values.
func UpdateMonthConfig(config *MonthConfig) error {
	if config.Completed {
		return ErrMonthCompleted
	}

	if config.Locked {
		return ErrMonthLocked
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(config).Error; err != nil {
			return err
		}

		return recomputeMonth(tx, config)
	})
}
