package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RiceSource is the provenance of a stock addition.
type RiceSource string

const (
	// Rice received through the regular government supply channel
	RiceSourceLifted RiceSource = "lifted"
	// Rice obtained from alternative or emergency sources
	RiceSourceArranged RiceSource = "arranged"
)

// RiceAddition is the audit record for one stock addition to a month.
//
// Both sources increase the available stock identically, they are kept
// apart for reporting provenance.
type RiceAddition struct {
	DefaultModel
	MonthConfig   MonthConfig `json:"-"`
	MonthConfigID uuid.UUID
	Section       ledger.Section
	Source        RiceSource
	Amount        decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Added rice in kg
	Note          string
}

var (
	ErrAdditionNotPositive = errors.New("rice additions must be larger than zero")
	ErrRiceSourceInvalid   = errors.New("the rice source must be either 'lifted' or 'arranged'")
	ErrSectionNotActive    = errors.New("the school has no students in this section")
)

func (r *RiceAddition) BeforeSave(_ *gorm.DB) error {
	r.Note = strings.TrimSpace(r.Note)

	if !r.Amount.IsPositive() {
		return ErrAdditionNotPositive
	}

	switch r.Source {
	case RiceSourceLifted, RiceSourceArranged:
	default:
		return ErrRiceSourceInvalid
	}

	return nil
}

// AddRice records a stock addition for one section of a month and updates
// the cumulative counters on the configuration.
//
// Locking the month blocks entries, not administrative stock corrections,
// so only completed months reject additions. The running balances of the
// month's entries are recomputed since the added stock changes the
// available amount every entry draws from.
func AddRice(config *MonthConfig, section ledger.Section, source RiceSource, amount decimal.Decimal, note string) (RiceAddition, error) {
	if config.Completed {
		return RiceAddition{}, ErrMonthCompleted
	}

	var school School
	err := DB.First(&school, config.SchoolID).Error
	if err != nil {
		return RiceAddition{}, err
	}

	if section == ledger.SectionPrimary && !school.NeedsPrimary() ||
		section == ledger.SectionMiddle && !school.NeedsMiddle() {
		return RiceAddition{}, ErrSectionNotActive
	}

	addition := RiceAddition{
		MonthConfigID: config.ID,
		Section:       section,
		Source:        source,
		Amount:        amount,
		Note:          note,
	}

	err = DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&addition).Error; err != nil {
			return err
		}

		switch {
		case section == ledger.SectionPrimary && source == RiceSourceLifted:
			config.RiceLiftedPrimary = config.RiceLiftedPrimary.Add(amount)
		case section == ledger.SectionPrimary && source == RiceSourceArranged:
			config.RiceArrangedPrimary = config.RiceArrangedPrimary.Add(amount)
		case section == ledger.SectionMiddle && source == RiceSourceLifted:
			config.RiceLiftedMiddle = config.RiceLiftedMiddle.Add(amount)
		case section == ledger.SectionMiddle && source == RiceSourceArranged:
			config.RiceArrangedMiddle = config.RiceArrangedMiddle.Add(amount)
		}

		err := tx.Model(config).
			Select("RiceLiftedPrimary", "RiceArrangedPrimary", "RiceLiftedMiddle", "RiceArrangedMiddle").
			Updates(*config).Error
		if err != nil {
			return err
		}

		return recomputeMonth(tx, config)
	})
	if err != nil {
		return RiceAddition{}, err
	}

	return addition, nil
}
