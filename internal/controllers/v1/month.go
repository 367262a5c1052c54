package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mdm-tracker/backend/internal/httputil"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"github.com/shopspring/decimal"
)

// RegisterMonthRoutes registers the routes for the month snapshot with
// the RouterGroup that is passed.
func RegisterMonthRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsMonth)
		r.GET("", GetMonth)
	}
}

// MonthQuery is the query string for the month snapshot.
type MonthQuery struct {
	School string `form:"school" binding:"required"` // ID of the school
	Month  string `form:"month" binding:"required"`  // The month in YYYY-MM format
}

// SectionSnapshot is the reconciled balance of one section for one month.
type SectionSnapshot struct {
	OpeningBalance decimal.Decimal    `json:"openingBalance" example:"100"`   // Rice stock at the start of the month, kg
	RiceLifted     decimal.Decimal    `json:"riceLifted" example:"50"`        // Rice received through the supply channel, kg
	RiceArranged   decimal.Decimal    `json:"riceArranged" example:"0"`       // Rice from alternative sources, kg
	ConsumedRice   decimal.Decimal    `json:"consumedRice" example:"6"`       // Rice consumed by the month's entries, kg
	ConsumedAmount decimal.Decimal    `json:"consumedAmount" example:"152.8"` // Amount consumed by the month's entries
	ClosingBalance decimal.Decimal    `json:"closingBalance" example:"144"`   // opening + lifted + arranged - consumed. May be negative.
	StockStatus    models.StockStatus `json:"stockStatus" example:"ok"`       // ok, low or insufficient
}

// Month is the computed snapshot of one school's month.
type Month struct {
	ID     uuid.UUID   `json:"id" example:"61027ebb-ab75-4a49-9e23-a104ddd9ba6b"` // The ID of the month configuration
	School uuid.UUID   `json:"school" example:"d1b4a4a6-5b5e-4f1a-b2c3-2f8a5a7d9e10"`
	Month  types.Month `json:"month" example:"2026-04-01T00:00:00.000000Z"`

	Primary SectionSnapshot `json:"primary"` // Balance of the primary section
	Middle  SectionSnapshot `json:"middle"`  // Balance of the middle section

	TotalStudents    int64           `json:"totalStudents" example:"1430"`      // Served students summed over all entries
	CumulativeAmount decimal.Decimal `json:"cumulativeAmount" example:"3520.4"` // Amount consumed over all entries

	Locked    bool `json:"locked" example:"false"`
	Completed bool `json:"completed" example:"false"`

	Entries []DailyEntry `json:"entries"` // The month's entries in date order with their running balances
}

type MonthResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Month  `json:"data"`                                                          // The snapshot data
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Months
// @Success		204
// @Router			/v1/months [options]
func OptionsMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get month snapshot
// @Description	Returns the reconciled balance snapshot of one school's month: per-section opening, additions, consumption and closing balances, stock warnings and every entry with its running balances.
// @Tags			Months
// @Produce		json
// @Success		200	{object}	MonthResponse
// @Failure		400	{object}	MonthResponse
// @Failure		404	{object}	MonthResponse
// @Failure		500	{object}	MonthResponse
// @Param			school	query	string	true	"ID of the school"
// @Param			month	query	string	true	"The month in YYYY-MM format"
// @Router			/v1/months [get]
func GetMonth(c *gin.Context) {
	var query MonthQuery
	err := c.BindQuery(&query)
	if err != nil {
		e := httputil.ErrInvalidQuery.Error()
		c.JSON(http.StatusBadRequest, MonthResponse{
			Error: &e,
		})
		return
	}

	schoolID, err := httputil.UUIDFromString(query.School)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthResponse{
			Error: &e,
		})
		return
	}

	month, err := types.ParseMonth(query.Month)
	if err != nil {
		e := httputil.ErrInvalidMonth.Error()
		c.JSON(http.StatusBadRequest, MonthResponse{
			Error: &e,
		})
		return
	}

	var config models.MonthConfig
	err = models.DB.
		Where(&models.MonthConfig{SchoolID: schoolID, Month: month}).
		First(&config).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthResponse{
			Error: &e,
		})
		return
	}

	entries, err := models.EntriesForMonth(models.DB, schoolID, month)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthResponse{
			Error: &e,
		})
		return
	}

	threshold := models.LowStockThreshold()

	var totalStudents int64
	cumulativeAmount := decimal.Zero

	apiEntries := make([]DailyEntry, 0)
	for _, entry := range entries {
		totalStudents += entry.TotalStudents
		cumulativeAmount = entry.CumulativeAmount
		apiEntries = append(apiEntries, newDailyEntry(c, entry))
	}

	data := Month{
		ID:     config.ID,
		School: config.SchoolID,
		Month:  config.Month,
		Primary: SectionSnapshot{
			OpeningBalance: config.OpeningBalancePrimary,
			RiceLifted:     config.RiceLiftedPrimary,
			RiceArranged:   config.RiceArrangedPrimary,
			ConsumedRice:   config.ConsumedRicePrimary,
			ConsumedAmount: config.ConsumedAmountPrimary,
			ClosingBalance: config.ClosingBalancePrimary(),
			StockStatus:    config.StockStatus(ledger.SectionPrimary, threshold),
		},
		Middle: SectionSnapshot{
			OpeningBalance: config.OpeningBalanceMiddle,
			RiceLifted:     config.RiceLiftedMiddle,
			RiceArranged:   config.RiceArrangedMiddle,
			ConsumedRice:   config.ConsumedRiceMiddle,
			ConsumedAmount: config.ConsumedAmountMiddle,
			ClosingBalance: config.ClosingBalanceMiddle(),
			StockStatus:    config.StockStatus(ledger.SectionMiddle, threshold),
		},
		TotalStudents:    totalStudents,
		CumulativeAmount: cumulativeAmount,
		Locked:           config.Locked,
		Completed:        config.Completed,
		Entries:          apiEntries,
	}

	c.JSON(http.StatusOK, MonthResponse{Data: &data})
}
