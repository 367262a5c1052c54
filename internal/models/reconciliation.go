package models

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrCannotComplete       = errors.New("the month cannot be completed: it is already completed or has no entries")
	ErrPriorMonthIncomplete = errors.New("the previous month must be completed before the next one can be created")
	ErrNextMonthExists      = errors.New("the following month is already configured")
)

// CanComplete reports whether a month is ready to be closed: it must have
// at least one daily entry and must not be completed yet.
func CanComplete(config MonthConfig) (bool, error) {
	if config.Completed {
		return false, nil
	}

	var count int64
	err := DB.Model(&DailyEntry{}).
		Where("school_id = ? AND date >= ? AND date <= ?", config.SchoolID, config.Month.FirstDay(), config.Month.LastDay()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CompleteMonth closes a month for good.
//
// The running balances are recomputed one last time, then the month is
// marked completed and locked. There is no way back: completed months
// reject every mutation, including stock additions and lock toggles.
func CompleteMonth(config *MonthConfig) error {
	ok, err := CanComplete(*config)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCannotComplete
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := recomputeMonth(tx, config); err != nil {
			return err
		}

		config.Completed = true
		config.Locked = true

		return tx.Model(config).
			Select("Completed", "Locked").
			Updates(*config).Error
	})
}

// CreateNextMonth seeds the configuration of the month following a
// completed one.
//
// The opening balances are the prior month's closing balances, negative
// values included: a school that overdrew starts the new month in deficit
// and corrects it with lifted or arranged rice. The ingredient rates and
// condiment split are copied forward as defaults.
func CreateNextMonth(completed MonthConfig) (MonthConfig, error) {
	if !completed.Completed {
		return MonthConfig{}, ErrPriorMonthIncomplete
	}

	next := completed.Month.Next()

	var count int64
	err := DB.Model(&MonthConfig{}).
		Where("school_id = ? AND month = ?", completed.SchoolID, next).
		Count(&count).Error
	if err != nil {
		return MonthConfig{}, err
	}
	if count > 0 {
		return MonthConfig{}, ErrNextMonthExists
	}

	config := MonthConfig{
		SchoolID:              completed.SchoolID,
		Month:                 next,
		RatesPrimary:          completed.RatesPrimary,
		RatesMiddle:           completed.RatesMiddle,
		Condiments:            completed.Condiments,
		OpeningBalancePrimary: completed.ClosingBalancePrimary(),
		OpeningBalanceMiddle:  completed.ClosingBalanceMiddle(),
	}

	err = DB.Create(&config).Error
	if err != nil {
		return MonthConfig{}, err
	}

	return config, nil
}
