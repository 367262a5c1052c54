package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/shopspring/decimal"
)

type DailyEntryEditable struct {
	SchoolID      uuid.UUID `json:"schoolId" example:"d1b4a4a6-5b5e-4f1a-b2c3-2f8a5a7d9e10"` // ID of the school
	Date          time.Time `json:"date" example:"2026-04-07T00:00:00.000000Z"`              // The day the meals were served. Normalized to 00:00 UTC.
	ServedPrimary int64     `json:"servedPrimary" example:"40" minimum:"0"`                  // Students served in the primary section
	ServedMiddle  int64     `json:"servedMiddle" example:"25" minimum:"0"`                   // Students served in the middle section
	Remarks       string    `json:"remarks" example:"School closed half day" default:""`    // Free-form remarks, at most 500 characters
}

// model returns the database resource for the API representation of the editable fields
func (editable DailyEntryEditable) model() models.DailyEntry {
	return models.DailyEntry{
		SchoolID:      editable.SchoolID,
		Date:          editable.Date,
		ServedPrimary: editable.ServedPrimary,
		ServedMiddle:  editable.ServedMiddle,
		Remarks:       editable.Remarks,
	}
}

type DailyEntryLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/entries/af892e10-7e0a-4f8f-b857-83625e959b8a"`                  // The entry itself
	Snapshot string `json:"snapshot" example:"https://example.com/api/v1/months?school=d1b4a4a6-5b5e-4f1a-b2c3&month=2026-04"`       // The computed snapshot of the entry's month
}

// DailyEntry is the API representation of a daily entry including the
// computed consumption and the running balances.
type DailyEntry struct {
	models.DefaultModel
	DailyEntryEditable

	RiceConsumedPrimary decimal.Decimal `json:"riceConsumedPrimary" example:"6"`   // Rice consumed by the primary section, kg
	RiceConsumedMiddle  decimal.Decimal `json:"riceConsumedMiddle" example:"3.75"` // Rice consumed by the middle section, kg
	AmountPrimary       decimal.Decimal `json:"amountPrimary" example:"152.80"`    // Amount consumed by the primary section
	AmountMiddle        decimal.Decimal `json:"amountMiddle" example:"98.10"`      // Amount consumed by the middle section

	OpeningBalancePrimary   decimal.Decimal `json:"openingBalancePrimary" example:"150"`   // Rice available before this entry, kg
	OpeningBalanceMiddle    decimal.Decimal `json:"openingBalanceMiddle" example:"110"`    // Rice available before this entry, kg
	RemainingBalancePrimary decimal.Decimal `json:"remainingBalancePrimary" example:"144"` // Rice left after this entry, kg. May be negative.
	RemainingBalanceMiddle  decimal.Decimal `json:"remainingBalanceMiddle" example:"106.25"`

	TotalStudents    int64           `json:"totalStudents" example:"65"`         // Served students across both sections
	TotalAmount      decimal.Decimal `json:"totalAmount" example:"250.90"`       // Amount consumed across both sections
	CumulativeAmount decimal.Decimal `json:"cumulativeAmount" example:"1823.40"` // Month-to-date amount including this entry

	Links DailyEntryLinks `json:"links"`
}

// newDailyEntry returns the API representation of the resource
func newDailyEntry(c *gin.Context, model models.DailyEntry) DailyEntry {
	url := c.GetString(string(models.DBContextURL))

	return DailyEntry{
		DefaultModel: model.DefaultModel,
		DailyEntryEditable: DailyEntryEditable{
			SchoolID:      model.SchoolID,
			Date:          model.Date,
			ServedPrimary: model.ServedPrimary,
			ServedMiddle:  model.ServedMiddle,
			Remarks:       model.Remarks,
		},
		RiceConsumedPrimary:     model.RiceConsumedPrimary,
		RiceConsumedMiddle:      model.RiceConsumedMiddle,
		AmountPrimary:           model.AmountPrimary,
		AmountMiddle:            model.AmountMiddle,
		OpeningBalancePrimary:   model.OpeningBalancePrimary,
		OpeningBalanceMiddle:    model.OpeningBalanceMiddle,
		RemainingBalancePrimary: model.RemainingBalancePrimary,
		RemainingBalanceMiddle:  model.RemainingBalanceMiddle,
		TotalStudents:           model.TotalStudents,
		TotalAmount:             model.TotalAmount,
		CumulativeAmount:        model.CumulativeAmount,
		Links: DailyEntryLinks{
			Self:     fmt.Sprintf("%s/v1/entries/%s", url, model.ID),
			Snapshot: fmt.Sprintf("%s/v1/months?school=%s&month=%s", url, model.SchoolID, model.Date.Format("2006-01")),
		},
	}
}

type DailyEntryListResponse struct {
	Data       []DailyEntry `json:"data"`                                                          // List of daily entries
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type DailyEntryCreateResponse struct {
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []DailyEntryResponse `json:"data"`                                                          // List of created daily entries
}

func (d *DailyEntryCreateResponse) appendError(err error, currentStatus int) int {
	e := err.Error()
	d.Data = append(d.Data, DailyEntryResponse{Error: &e})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type DailyEntryResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *DailyEntry `json:"data"`                                                          // The daily entry data
}

type DailyEntryQueryFilter struct {
	School string `form:"school" filterField:"false"` // Filter by school ID
	Month  string `form:"month" filterField:"false"`  // Filter by month in YYYY-MM format
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first entry returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of entries to return. Defaults to 50.
}
