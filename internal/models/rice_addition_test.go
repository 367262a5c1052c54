package models_test

import (
	"time"

	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAddRice() {
	t := suite.T()
	_, config := suite.entrySetup()

	addition, err := models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.NewFromInt(25), "Truck delivery week 14")
	require.Nil(t, err)

	assert.Equal(t, config.ID, addition.MonthConfigID)
	assert.Equal(t, models.RiceSourceLifted, addition.Source)
	assert.Equal(t, "Truck delivery week 14", addition.Note)

	var reloaded models.MonthConfig
	require.Nil(t, models.DB.First(&reloaded, config.ID).Error)
	assert.True(t, reloaded.RiceLiftedPrimary.Equal(decimal.NewFromInt(75)), "lifted is %s", reloaded.RiceLiftedPrimary)
	assert.True(t, reloaded.RiceArrangedPrimary.IsZero())

	// Arranged rice is tracked separately
	_, err = models.AddRice(&reloaded, ledger.SectionPrimary, models.RiceSourceArranged, decimal.NewFromInt(10), "")
	require.Nil(t, err)

	require.Nil(t, models.DB.First(&reloaded, config.ID).Error)
	assert.True(t, reloaded.RiceLiftedPrimary.Equal(decimal.NewFromInt(75)))
	assert.True(t, reloaded.RiceArrangedPrimary.Equal(decimal.NewFromInt(10)))
}

func (suite *TestSuiteStandard) TestAddRiceRecomputesEntries() {
	t := suite.T()
	school, config := suite.entrySetup()

	entry := suite.createTestDailyEntry(models.DailyEntry{
		SchoolID:      school.ID,
		Date:          april(1),
		ServedPrimary: 40,
	}, ledger.DefaultRiceRates())

	assert.True(t, entry.OpeningBalancePrimary.Equal(decimal.NewFromInt(150)))

	_, err := models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.NewFromInt(25), "")
	require.Nil(t, err)

	// The added stock flows into the existing chain
	var reloaded models.DailyEntry
	require.Nil(t, models.DB.First(&reloaded, entry.ID).Error)
	assert.True(t, reloaded.OpeningBalancePrimary.Equal(decimal.NewFromInt(175)), "opening is %s", reloaded.OpeningBalancePrimary)
}

func (suite *TestSuiteStandard) TestAddRiceNotPositive() {
	_, config := suite.entrySetup()

	_, err := models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.Zero, "")
	assert.ErrorIs(suite.T(), err, models.ErrAdditionNotPositive)

	_, err = models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.NewFromInt(-5), "")
	assert.ErrorIs(suite.T(), err, models.ErrAdditionNotPositive)
}

func (suite *TestSuiteStandard) TestAddRiceInvalidSource() {
	_, config := suite.entrySetup()

	_, err := models.AddRice(&config, ledger.SectionPrimary, "donated", decimal.NewFromInt(5), "")
	assert.ErrorIs(suite.T(), err, models.ErrRiceSourceInvalid)
}

func (suite *TestSuiteStandard) TestAddRiceInactiveSection() {
	// The default school type has no middle section
	_, config := suite.entrySetup()

	_, err := models.AddRice(&config, ledger.SectionMiddle, models.RiceSourceLifted, decimal.NewFromInt(5), "")
	assert.ErrorIs(suite.T(), err, models.ErrSectionNotActive)
}

func (suite *TestSuiteStandard) TestAddRiceCompletedMonth() {
	config := models.MonthConfig{Completed: true}

	_, err := models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.NewFromInt(5), "")
	assert.ErrorIs(suite.T(), err, models.ErrMonthCompleted)
}

func (suite *TestSuiteStandard) TestAddRiceLockedMonth() {
	// Locking blocks entries, not administrative stock corrections
	_, config := suite.entrySetup()
	require.Nil(suite.T(), config.ToggleLock(models.DB))

	_, err := models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.NewFromInt(5), "")
	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestRiceAdditionList() {
	t := suite.T()
	school := suite.createTestSchool(models.School{Type: models.SchoolTypePrimaryMiddle})
	config := suite.createTestMonthConfig(models.MonthConfig{
		SchoolID:    school.ID,
		Month:       types.NewMonth(2026, time.April),
		RatesMiddle: testRates(),
	})

	_, err := models.AddRice(&config, ledger.SectionPrimary, models.RiceSourceLifted, decimal.NewFromInt(5), "first")
	require.Nil(t, err)
	_, err = models.AddRice(&config, ledger.SectionMiddle, models.RiceSourceArranged, decimal.NewFromInt(3), "second")
	require.Nil(t, err)

	var additions []models.RiceAddition
	require.Nil(t, models.DB.Where(&models.RiceAddition{MonthConfigID: config.ID}).Find(&additions).Error)
	assert.Len(t, additions, 2)
}
