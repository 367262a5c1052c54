package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
)

type MonthConfigEditable struct {
	SchoolID uuid.UUID   `json:"schoolId" example:"d1b4a4a6-5b5e-4f1a-b2c3-2f8a5a7d9e10"` // ID of the school
	Month    types.Month `json:"month" example:"2026-04-01T00:00:00.000000Z"`             // The month. This is always set to 00:00 UTC on the first of the month.
	Note     string      `json:"note" example:"Rates raised by the April circular" default:""`

	RatesPrimary models.SectionRates   `json:"ratesPrimary"` // Daily per-student ingredient cost, primary section
	RatesMiddle  models.SectionRates   `json:"ratesMiddle"`  // Daily per-student ingredient cost, middle section
	Condiments   models.CondimentSplit `json:"condiments"`   // Percentage breakdown of the salt rate

	OpeningBalancePrimary decimal.Decimal `json:"openingBalancePrimary" example:"100"` // Rice stock in kg at the start of the month
	OpeningBalanceMiddle  decimal.Decimal `json:"openingBalanceMiddle" example:"80"`   // Rice stock in kg at the start of the month
}

// model returns the database resource for the API representation of the editable fields
func (editable MonthConfigEditable) model() models.MonthConfig {
	return models.MonthConfig{
		SchoolID:              editable.SchoolID,
		Month:                 editable.Month,
		Note:                  editable.Note,
		RatesPrimary:          editable.RatesPrimary,
		RatesMiddle:           editable.RatesMiddle,
		Condiments:            editable.Condiments,
		OpeningBalancePrimary: editable.OpeningBalancePrimary,
		OpeningBalanceMiddle:  editable.OpeningBalanceMiddle,
	}
}

type MonthConfigLinks struct {
	Self          string `json:"self" example:"https://example.com/api/v1/month-configs/61027ebb-ab75-4a49-9e23-a104ddd9ba6b"`                // The month configuration itself
	RiceAdditions string `json:"riceAdditions" example:"https://example.com/api/v1/month-configs/61027ebb-ab75-4a49-9e23/rice-additions"`     // The month's stock additions
	Snapshot      string `json:"snapshot" example:"https://example.com/api/v1/months?school=d1b4a4a6-5b5e-4f1a-b2c3&month=2026-04"`           // The computed month snapshot
}

// MonthConfig is the API representation of a month configuration.
type MonthConfig struct {
	models.DefaultModel
	MonthConfigEditable

	// Computed and state fields
	RiceLiftedPrimary      decimal.Decimal    `json:"riceLiftedPrimary" example:"50"`       // Cumulative rice received through the supply channel, kg
	RiceLiftedMiddle       decimal.Decimal    `json:"riceLiftedMiddle" example:"30"`        // Cumulative rice received through the supply channel, kg
	RiceArrangedPrimary    decimal.Decimal    `json:"riceArrangedPrimary" example:"0"`      // Cumulative rice from alternative sources, kg
	RiceArrangedMiddle     decimal.Decimal    `json:"riceArrangedMiddle" example:"0"`       // Cumulative rice from alternative sources, kg
	ConsumedRicePrimary    decimal.Decimal    `json:"consumedRicePrimary" example:"6"`      // Rice consumed by the month's entries, kg
	ConsumedRiceMiddle     decimal.Decimal    `json:"consumedRiceMiddle" example:"4.5"`     // Rice consumed by the month's entries, kg
	ConsumedAmountPrimary  decimal.Decimal    `json:"consumedAmountPrimary" example:"152.80"`  // Amount consumed by the month's entries
	ConsumedAmountMiddle   decimal.Decimal    `json:"consumedAmountMiddle" example:"98.10"`    // Amount consumed by the month's entries
	ClosingBalancePrimary  decimal.Decimal    `json:"closingBalancePrimary" example:"144"`  // opening + lifted + arranged - consumed. May be negative.
	ClosingBalanceMiddle   decimal.Decimal    `json:"closingBalanceMiddle" example:"105.5"` // opening + lifted + arranged - consumed. May be negative.
	StockStatusPrimary     models.StockStatus `json:"stockStatusPrimary" example:"ok"`      // ok, low or insufficient
	StockStatusMiddle      models.StockStatus `json:"stockStatusMiddle" example:"low"`      // ok, low or insufficient
	Locked                 bool               `json:"locked" example:"false"`               // A locked month rejects entry changes
	Completed              bool               `json:"completed" example:"false"`            // A completed month is immutable

	Links MonthConfigLinks `json:"links"`
}

// newMonthConfig returns the API representation of the resource
func newMonthConfig(c *gin.Context, model models.MonthConfig) MonthConfig {
	url := c.GetString(string(models.DBContextURL))
	threshold := models.LowStockThreshold()

	return MonthConfig{
		DefaultModel: model.DefaultModel,
		MonthConfigEditable: MonthConfigEditable{
			SchoolID:              model.SchoolID,
			Month:                 model.Month,
			Note:                  model.Note,
			RatesPrimary:          model.RatesPrimary,
			RatesMiddle:           model.RatesMiddle,
			Condiments:            model.Condiments,
			OpeningBalancePrimary: model.OpeningBalancePrimary,
			OpeningBalanceMiddle:  model.OpeningBalanceMiddle,
		},
		RiceLiftedPrimary:     model.RiceLiftedPrimary,
		RiceLiftedMiddle:      model.RiceLiftedMiddle,
		RiceArrangedPrimary:   model.RiceArrangedPrimary,
		RiceArrangedMiddle:    model.RiceArrangedMiddle,
		ConsumedRicePrimary:   model.ConsumedRicePrimary,
		ConsumedRiceMiddle:    model.ConsumedRiceMiddle,
		ConsumedAmountPrimary: model.ConsumedAmountPrimary,
		ConsumedAmountMiddle:  model.ConsumedAmountMiddle,
		ClosingBalancePrimary: model.ClosingBalancePrimary(),
		ClosingBalanceMiddle:  model.ClosingBalanceMiddle(),
		StockStatusPrimary:    model.StockStatus(ledger.SectionPrimary, threshold),
		StockStatusMiddle:     model.StockStatus(ledger.SectionMiddle, threshold),
		Locked:                model.Locked,
		Completed:             model.Completed,
		Links: MonthConfigLinks{
			Self:          fmt.Sprintf("%s/v1/month-configs/%s", url, model.ID),
			RiceAdditions: fmt.Sprintf("%s/v1/month-configs/%s/rice-additions", url, model.ID),
			Snapshot:      fmt.Sprintf("%s/v1/months?school=%s&month=%s", url, model.SchoolID, model.Month),
		},
	}
}

type MonthConfigListResponse struct {
	Data       []MonthConfig `json:"data"`                                                          // List of month configurations
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type MonthConfigCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []MonthConfigResponse `json:"data"`                                                          // List of created month configurations
}

func (m *MonthConfigCreateResponse) appendError(err error, currentStatus int) int {
	e := err.Error()
	m.Data = append(m.Data, MonthConfigResponse{Error: &e})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type MonthConfigResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *MonthConfig `json:"data"`                                                          // The month configuration data
}

type MonthConfigQueryFilter struct {
	School string `form:"school" filterField:"false"` // Filter by school ID
	Month  string `form:"month" filterField:"false"`  // Filter by month in YYYY-MM format
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first configuration returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of configurations to return. Defaults to 50.
}

// RiceAdditionEditable contains the user supplied fields for a stock addition.
type RiceAdditionEditable struct {
	Section ledger.Section    `json:"section" example:"primary" binding:"required"`    // primary or middle
	Source  models.RiceSource `json:"source" example:"lifted" binding:"required"`      // lifted or arranged
	Amount  decimal.Decimal   `json:"amount" example:"50" binding:"required"`          // Added rice in kg, must be positive
	Note    string            `json:"note" example:"Truck delivery week 14" default:""` // A note, e.g. the delivery reference
}

// RiceAddition is the API representation of a stock addition.
type RiceAddition struct {
	models.DefaultModel
	MonthConfigID uuid.UUID         `json:"monthConfigId" example:"61027ebb-ab75-4a49-9e23-a104ddd9ba6b"`
	Section       ledger.Section    `json:"section" example:"primary"`
	Source        models.RiceSource `json:"source" example:"lifted"`
	Amount        decimal.Decimal   `json:"amount" example:"50"`
	Note          string            `json:"note" example:"Truck delivery week 14"`
}

func newRiceAddition(model models.RiceAddition) RiceAddition {
	return RiceAddition{
		DefaultModel:  model.DefaultModel,
		MonthConfigID: model.MonthConfigID,
		Section:       model.Section,
		Source:        model.Source,
		Amount:        model.Amount,
		Note:          model.Note,
	}
}

type RiceAdditionResponse struct {
	Error *string       `json:"error" example:"rice additions must be larger than zero"` // The error, if any occurred
	Data  *RiceAddition `json:"data"`                                                    // The created stock addition
}

type RiceAdditionListResponse struct {
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []RiceAddition `json:"data"`                                                          // The month's stock additions
}
