package models_test

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestMonthConfigTrimWhitespace() {
	note := " Some more whitespace in the notes    "

	config := suite.createTestMonthConfig(models.MonthConfig{
		Note:     note,
		SchoolID: suite.createTestSchool(models.School{}).ID,
		Month:    types.NewMonth(2026, time.April),
	})

	assert.Equal(suite.T(), strings.TrimSpace(note), config.Note)
}

func (suite *TestSuiteStandard) TestMonthConfigDuplicateMonth() {
	school := suite.createTestSchool(models.School{})
	_ = suite.createTestMonthConfig(models.MonthConfig{
		SchoolID: school.ID,
		Month:    types.NewMonth(2026, time.April),
	})

	config := models.MonthConfig{
		SchoolID:     school.ID,
		Month:        types.NewMonth(2026, time.April),
		RatesPrimary: testRates(),
		Condiments:   testCondiments(),
	}

	err := models.DB.Create(&config).Error
	assert.ErrorIs(suite.T(), err, models.ErrMonthConfigExists)
}

func (suite *TestSuiteStandard) TestMonthConfigSchoolRequired() {
	config := models.MonthConfig{
		SchoolID:     uuid.New(),
		Month:        types.NewMonth(2026, time.April),
		RatesPrimary: testRates(),
		Condiments:   testCondiments(),
	}

	err := models.DB.Create(&config).Error
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestMonthConfigNegativeRates() {
	rates := testRates()
	rates.Oil = decimal.NewFromFloat(-0.51)

	config := models.MonthConfig{
		SchoolID:     suite.createTestSchool(models.School{}).ID,
		Month:        types.NewMonth(2026, time.April),
		RatesPrimary: rates,
		Condiments:   testCondiments(),
	}

	err := models.DB.Create(&config).Error
	assert.ErrorIs(suite.T(), err, models.ErrInvalidRates)
}

func (suite *TestSuiteStandard) TestMonthConfigMissingSectionRates() {
	school := suite.createTestSchool(models.School{Type: models.SchoolTypePrimaryMiddle})

	config := models.MonthConfig{
		SchoolID:     school.ID,
		Month:        types.NewMonth(2026, time.April),
		RatesPrimary: testRates(),
		Condiments:   testCondiments(),
	}

	err := models.DB.Create(&config).Error
	assert.ErrorIs(suite.T(), err, models.ErrInvalidRates, "middle rates are missing, creation must fail")
}

func (suite *TestSuiteStandard) TestMonthConfigCondimentSplit() {
	tests := []struct {
		name       string
		condiments models.CondimentSplit
		wantErr    bool
	}{
		{"exact hundred", testCondiments(), false},
		{"within tolerance", models.CondimentSplit{
			Common:    decimal.NewFromFloat(5.004),
			Chilli:    decimal.NewFromInt(35),
			Turmeric:  decimal.NewFromInt(25),
			Coriander: decimal.NewFromInt(15),
			Other:     decimal.NewFromInt(20),
		}, false},
		{"all zero", models.CondimentSplit{}, true},
		{"sums to ninety", models.CondimentSplit{
			Common:    decimal.NewFromInt(5),
			Chilli:    decimal.NewFromInt(35),
			Turmeric:  decimal.NewFromInt(25),
			Coriander: decimal.NewFromInt(15),
			Other:     decimal.NewFromInt(10),
		}, true},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			config := models.MonthConfig{
				SchoolID:     suite.createTestSchool(models.School{}).ID,
				Month:        types.NewMonth(2026, time.April),
				RatesPrimary: testRates(),
				Condiments:   tt.condiments,
			}

			err := models.DB.Create(&config).Error
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidRates)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestMonthConfigYearRange() {
	tests := []struct {
		year    int
		wantErr bool
	}{
		{1999, true},
		{2019, true},
		{2020, false},
		{2100, false},
		{2101, true},
	}

	for _, tt := range tests {
		suite.T().Run(strconv.Itoa(tt.year), func(t *testing.T) {
			config := models.MonthConfig{
				SchoolID:     suite.createTestSchool(models.School{}).ID,
				Month:        types.NewMonth(tt.year, time.April),
				RatesPrimary: testRates(),
				Condiments:   testCondiments(),
			}

			err := models.DB.Create(&config).Error
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrMonthOutOfRange)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestMonthConfigClosingBalance() {
	config := models.MonthConfig{
		OpeningBalancePrimary: decimal.NewFromInt(100),
		RiceLiftedPrimary:     decimal.NewFromInt(50),
		RiceArrangedPrimary:   decimal.NewFromInt(20),
		ConsumedRicePrimary:   decimal.NewFromInt(30),
		OpeningBalanceMiddle:  decimal.NewFromInt(5),
		ConsumedRiceMiddle:    decimal.NewFromInt(12),
	}

	assert.True(suite.T(), config.ClosingBalancePrimary().Equal(decimal.NewFromInt(140)))

	// A deficit is a valid closing balance
	assert.True(suite.T(), config.ClosingBalanceMiddle().Equal(decimal.NewFromInt(-7)))
}

func (suite *TestSuiteStandard) TestMonthConfigStockStatus() {
	threshold := decimal.NewFromInt(10)

	tests := []struct {
		name    string
		closing decimal.Decimal
		status  models.StockStatus
	}{
		{"plenty", decimal.NewFromInt(144), models.StockOK},
		{"exactly at threshold", decimal.NewFromInt(10), models.StockOK},
		{"below threshold", decimal.NewFromFloat(9.99), models.StockLow},
		{"zero", decimal.Zero, models.StockLow},
		{"deficit", decimal.NewFromInt(-3), models.StockInsufficient},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			config := models.MonthConfig{OpeningBalancePrimary: tt.closing}
			assert.Equal(t, tt.status, config.StockStatus(ledger.SectionPrimary, threshold))
		})
	}
}

func (suite *TestSuiteStandard) TestLowStockThreshold() {
	assert.True(suite.T(), models.LowStockThreshold().Equal(decimal.NewFromInt(10)))

	os.Setenv("LOW_STOCK_THRESHOLD_KG", "25")
	assert.True(suite.T(), models.LowStockThreshold().Equal(decimal.NewFromInt(25)))

	os.Setenv("LOW_STOCK_THRESHOLD_KG", "not a number")
	assert.True(suite.T(), models.LowStockThreshold().Equal(decimal.NewFromInt(10)))

	os.Unsetenv("LOW_STOCK_THRESHOLD_KG")
}

func (suite *TestSuiteStandard) TestMonthConfigToggleLock() {
	config := suite.createTestMonthConfig(models.MonthConfig{
		SchoolID: suite.createTestSchool(models.School{}).ID,
		Month:    types.NewMonth(2026, time.April),
	})

	assert.Nil(suite.T(), config.ToggleLock(models.DB))
	assert.True(suite.T(), config.Locked)
	assert.True(suite.T(), config.Immutable())

	var reloaded models.MonthConfig
	assert.Nil(suite.T(), models.DB.First(&reloaded, config.ID).Error)
	assert.True(suite.T(), reloaded.Locked)

	assert.Nil(suite.T(), config.ToggleLock(models.DB))
	assert.False(suite.T(), config.Locked)
	assert.False(suite.T(), config.Immutable())
}

func (suite *TestSuiteStandard) TestMonthConfigToggleLockCompleted() {
	config := models.MonthConfig{Completed: true}

	assert.ErrorIs(suite.T(), config.ToggleLock(models.DB), models.ErrMonthCompleted)
}

func (suite *TestSuiteStandard) TestUpdateMonthConfigLocked() {
	config := suite.createTestMonthConfig(models.MonthConfig{
		SchoolID: suite.createTestSchool(models.School{}).ID,
		Month:    types.NewMonth(2026, time.April),
	})
	assert.Nil(suite.T(), config.ToggleLock(models.DB))

	config.Note = "must not be saved"
	assert.ErrorIs(suite.T(), models.UpdateMonthConfig(&config), models.ErrMonthLocked)

	var reloaded models.MonthConfig
	assert.Nil(suite.T(), models.DB.First(&reloaded, config.ID).Error)
	assert.Equal(suite.T(), "", reloaded.Note)
}

func (suite *TestSuiteStandard) TestUpdateMonthConfigCompleted() {
	config := models.MonthConfig{Completed: true}

	assert.ErrorIs(suite.T(), models.UpdateMonthConfig(&config), models.ErrMonthCompleted)
}

func (suite *TestSuiteStandard) TestUpdateMonthConfig() {
	config := suite.createTestMonthConfig(models.MonthConfig{
		SchoolID:              suite.createTestSchool(models.School{}).ID,
		Month:                 types.NewMonth(2026, time.April),
		OpeningBalancePrimary: decimal.NewFromInt(100),
	})

	config.Note = "Rates raised by the April circular"
	config.OpeningBalancePrimary = decimal.NewFromInt(120)

	assert.Nil(suite.T(), models.UpdateMonthConfig(&config))

	var reloaded models.MonthConfig
	assert.Nil(suite.T(), models.DB.First(&reloaded, config.ID).Error)
	assert.Equal(suite.T(), "Rates raised by the April circular", reloaded.Note)
	assert.True(suite.T(), reloaded.OpeningBalancePrimary.Equal(decimal.NewFromInt(120)))
}
