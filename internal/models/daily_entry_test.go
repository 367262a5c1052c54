package models_test

import (
	"strings"
	"time"

	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entrySetup creates a school and an April 2026 configuration with 100 kg
// opening stock and 50 kg lifted rice for the primary section.
func (suite *TestSuiteStandard) entrySetup() (models.School, models.MonthConfig) {
	school := suite.createTestSchool(models.School{})
	config := suite.createTestMonthConfig(models.MonthConfig{
		SchoolID:              school.ID,
		Month:                 types.NewMonth(2026, time.April),
		OpeningBalancePrimary: decimal.NewFromInt(100),
		RiceLiftedPrimary:     decimal.NewFromInt(50),
	})

	return school, config
}

func april(day int) time.Time {
	return time.Date(2026, time.April, day, 0, 0, 0, 0, time.UTC)
}

func (suite *TestSuiteStandard) TestDailyEntryBalanceChain() {
	t := suite.T()
	school, config := suite.entrySetup()

	rates := ledger.RiceRates{Primary: decimal.NewFromFloat(0.15)}

	first := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, rates)

	// The chain starts with the full available stock: opening plus all
	// additions
	assert.True(t, first.OpeningBalancePrimary.Equal(decimal.NewFromInt(150)), "opening is %s", first.OpeningBalancePrimary)
	assert.True(t, first.RiceConsumedPrimary.Equal(decimal.NewFromInt(6)), "consumed is %s", first.RiceConsumedPrimary)
	assert.True(t, first.RemainingBalancePrimary.Equal(decimal.NewFromInt(144)), "remaining is %s", first.RemainingBalancePrimary)

	second := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(2),
		ServedPrimary: 33,
	}, rates)

	assert.True(t, second.OpeningBalancePrimary.Equal(first.RemainingBalancePrimary))
	assert.True(t, second.RemainingBalancePrimary.Equal(decimal.NewFromFloat(139.05)), "remaining is %s", second.RemainingBalancePrimary)

	// A day without meals consumes nothing
	third := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(3),
	}, rates)

	assert.True(t, third.OpeningBalancePrimary.Equal(second.RemainingBalancePrimary))
	assert.True(t, third.RemainingBalancePrimary.Equal(second.RemainingBalancePrimary))

	// The configuration's consumption and closing balance follow the chain
	var reloaded models.MonthConfig
	require.Nil(t, models.DB.First(&reloaded, config.ID).Error)
	assert.True(t, reloaded.ConsumedRicePrimary.Equal(decimal.NewFromFloat(10.95)), "consumed is %s", reloaded.ConsumedRicePrimary)
	assert.True(t, reloaded.ClosingBalancePrimary().Equal(third.RemainingBalancePrimary), "closing is %s", reloaded.ClosingBalancePrimary())
}

func (suite *TestSuiteStandard) TestDailyEntryAmounts() {
	t := suite.T()
	school, _ := suite.entrySetup()

	entry := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, ledger.DefaultRiceRates())

	// 40 students at a total daily rate of 3.82
	assert.True(t, entry.AmountPrimary.Equal(decimal.NewFromFloat(152.80)), "amount is %s", entry.AmountPrimary)
	assert.True(t, entry.TotalAmount.Equal(decimal.NewFromFloat(152.80)))
	assert.True(t, entry.CumulativeAmount.Equal(decimal.NewFromFloat(152.80)))
	assert.Equal(t, int64(40), entry.TotalStudents)

	second := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(2),
		ServedPrimary: 10,
	}, ledger.DefaultRiceRates())

	assert.True(t, second.CumulativeAmount.Equal(decimal.NewFromFloat(191.00)), "cumulative is %s", second.CumulativeAmount)
}

func (suite *TestSuiteStandard) TestDailyEntryNormalizesDate() {
	school, _ := suite.entrySetup()

	ist := time.FixedZone("IST", 5*3600+1800)
	entry := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID: school.ID,
		Date:     time.Date(2026, time.April, 7, 14, 23, 5, 0, ist),
	}, ledger.DefaultRiceRates())

	assert.True(suite.T(), entry.Date.Equal(april(7)), "date is %s", entry.Date)
}

func (suite *TestSuiteStandard) TestDailyEntryTrimWhitespace() {
	school, _ := suite.entrySetup()

	entry := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(1),
		Remarks:  "  School closed half day   ",
	}, ledger.DefaultRiceRates())

	assert.Equal(suite.T(), "School closed half day", entry.Remarks)
}

func (suite *TestSuiteStandard) TestDailyEntryFutureDate() {
	school, _ := suite.entrySetup()

	entry := models.DailyEntry{
		SchoolID: school.ID,
		Date:     time.Now().AddDate(0, 0, 1),
	}

	err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
	assert.ErrorIs(suite.T(), err, models.ErrEntryDateInFuture)
}

func (suite *TestSuiteStandard) TestDailyEntryNoMonthConfig() {
	school, _ := suite.entrySetup()

	entry := models.DailyEntry{
		SchoolID: school.ID,
		Date:     time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	}

	err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
	assert.ErrorIs(suite.T(), err, models.ErrNoMonthConfig)
}

func (suite *TestSuiteStandard) TestDailyEntryDuplicateDate() {
	school, _ := suite.entrySetup()

	_ = suite.createTestDailyEntry(models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(1),
	}, ledger.DefaultRiceRates())

	duplicate := models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(1),
	}

	err := models.CreateDailyEntry(&duplicate, ledger.DefaultRiceRates())
	assert.ErrorIs(suite.T(), err, models.ErrEntryDateNotUnique)
}

func (suite *TestSuiteStandard) TestDailyEntryNegativeServed() {
	school, _ := suite.entrySetup()

	entry := models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: -1,
	}

	err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
	assert.ErrorIs(suite.T(), err, models.ErrServedNegative)
}

func (suite *TestSuiteStandard) TestDailyEntryRemarksTooLong() {
	school, _ := suite.entrySetup()

	entry := models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(1),
		Remarks:  strings.Repeat("a", 501),
	}

	err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
	assert.ErrorIs(suite.T(), err, models.ErrRemarksTooLong)
}

func (suite *TestSuiteStandard) TestDailyEntryRemarksLengthInRunes() {
	school, _ := suite.entrySetup()

	// 500 characters that take more than one byte each
	entry := models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(1),
		Remarks:  strings.Repeat("व", 500),
	}

	err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestDailyEntrySectionNotActive() {
	// The default school type only has a primary section
	school, _ := suite.entrySetup()

	entry := models.DailyEntry{
		SchoolID:     school.ID,
		Date:         april(1),
		ServedMiddle: 10,
	}

	err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
	assert.ErrorIs(suite.T(), err, models.ErrSectionNotActive)
}

func (suite *TestSuiteStandard) TestDailyEntryLockedMonth() {
	t := suite.T()
	school, config := suite.entrySetup()

	entry := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, ledger.DefaultRiceRates())

	require.Nil(t, config.ToggleLock(models.DB))

	// Create is rejected
	second := models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(2),
	}
	assert.ErrorIs(t, models.CreateDailyEntry(&second, ledger.DefaultRiceRates()), models.ErrMonthLocked)

	// Update is rejected and changes nothing
	err := models.UpdateDailyEntry(&entry, 10, 0, "", ledger.DefaultRiceRates())
	assert.ErrorIs(t, err, models.ErrMonthLocked)

	var reloaded models.DailyEntry
	require.Nil(t, models.DB.First(&reloaded, entry.ID).Error)
	assert.Equal(t, int64(40), reloaded.ServedPrimary)

	// Delete is rejected
	assert.ErrorIs(t, models.DeleteDailyEntry(&entry), models.ErrMonthLocked)
}

func (suite *TestSuiteStandard) TestDailyEntryUpdateCascades() {
	t := suite.T()
	school, _ := suite.entrySetup()

	rates := ledger.RiceRates{Primary: decimal.NewFromFloat(0.15)}

	first := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, rates)
	second := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(2),
		ServedPrimary: 40,
	}, rates)

	// Reducing the first day's consumption shifts every later balance
	err := models.UpdateDailyEntry(&first, 20, 0, "corrected head count", rates)
	require.Nil(t, err)

	assert.True(t, first.RiceConsumedPrimary.Equal(decimal.NewFromInt(3)))
	assert.True(t, first.RemainingBalancePrimary.Equal(decimal.NewFromInt(147)), "remaining is %s", first.RemainingBalancePrimary)
	assert.Equal(t, "corrected head count", first.Remarks)

	var reloaded models.DailyEntry
	require.Nil(t, models.DB.First(&reloaded, second.ID).Error)
	assert.True(t, reloaded.OpeningBalancePrimary.Equal(decimal.NewFromInt(147)))
	assert.True(t, reloaded.RemainingBalancePrimary.Equal(decimal.NewFromInt(141)))
}

func (suite *TestSuiteStandard) TestDailyEntryDeleteCascades() {
	t := suite.T()
	school, config := suite.entrySetup()

	rates := ledger.RiceRates{Primary: decimal.NewFromFloat(0.15)}

	first := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, rates)
	second := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(2),
		ServedPrimary: 40,
	}, rates)

	require.Nil(t, models.DeleteDailyEntry(&first))

	// The second entry now heads the chain
	var reloaded models.DailyEntry
	require.Nil(t, models.DB.First(&reloaded, second.ID).Error)
	assert.True(t, reloaded.OpeningBalancePrimary.Equal(decimal.NewFromInt(150)))

	var reloadedConfig models.MonthConfig
	require.Nil(t, models.DB.First(&reloadedConfig, config.ID).Error)
	assert.True(t, reloadedConfig.ConsumedRicePrimary.Equal(decimal.NewFromInt(6)))

	// The date slot is free again
	recreated := models.DailyEntry{
		SchoolID: school.ID,
		Date:     april(1),
	}
	assert.Nil(t, models.CreateDailyEntry(&recreated, rates))
}

func (suite *TestSuiteStandard) TestDailyEntryNegativeBalance() {
	t := suite.T()
	school := suite.createTestSchool(models.School{})
	config := suite.createTestMonthConfig(models.MonthConfig{
		SchoolID:              school.ID,
		Month:                 types.NewMonth(2026, time.April),
		OpeningBalancePrimary: decimal.NewFromInt(2),
	})

	// 40 students at 100g consume 4 kg, twice the available stock
	entry := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, ledger.DefaultRiceRates())

	assert.True(t, entry.RemainingBalancePrimary.Equal(decimal.NewFromInt(-2)), "remaining is %s", entry.RemainingBalancePrimary)

	var reloaded models.MonthConfig
	require.Nil(t, models.DB.First(&reloaded, config.ID).Error)
	assert.True(t, reloaded.ClosingBalancePrimary().Equal(decimal.NewFromInt(-2)))
	assert.Equal(t, models.StockInsufficient, reloaded.StockStatus(ledger.SectionPrimary, models.LowStockThreshold()))
}

func (suite *TestSuiteStandard) TestEntriesForMonth() {
	t := suite.T()
	school, config := suite.entrySetup()

	for _, day := range []int{3, 1, 2} {
		_ = suite.createTestDailyEntry(models.DailyEntry{
			SchoolID: school.ID,
			Date:     april(day),
		}, ledger.DefaultRiceRates())
	}

	entries, err := models.EntriesForMonth(models.DB, school.ID, config.Month)
	require.Nil(t, err)
	require.Len(t, entries, 3)

	// Sorted by date, not by creation order
	assert.True(t, entries[0].Date.Equal(april(1)))
	assert.True(t, entries[1].Date.Equal(april(2)))
	assert.True(t, entries[2].Date.Equal(april(3)))
}
