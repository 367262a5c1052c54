package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdm-tracker/backend/internal/httputil"
	"github.com/mdm-tracker/backend/internal/ledger"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"golang.org/x/exp/slices"
)

// RegisterDailyEntryRoutes registers the routes for daily entries with
// the RouterGroup that is passed.
func RegisterDailyEntryRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsDailyEntryList)
		r.GET("", GetDailyEntries)
		r.POST("", CreateDailyEntries)
	}

	// DailyEntry with ID
	{
		r.OPTIONS("/:id", OptionsDailyEntryDetail)
		r.GET("/:id", GetDailyEntry)
		r.PATCH("/:id", UpdateDailyEntryEndpoint)
		r.DELETE("/:id", DeleteDailyEntryEndpoint)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			DailyEntries
// @Success		204
// @Router			/v1/entries [options]
func OptionsDailyEntryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			DailyEntries
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/entries/{id} [options]
func OptionsDailyEntryDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.DailyEntry{})
}

// @Summary		Create daily entries
// @Description	Creates new daily entries. Each entry triggers a recomputation of its month's running balances.
// @Tags			DailyEntries
// @Accept			json
// @Produce		json
// @Success		201		{object}	DailyEntryCreateResponse
// @Failure		400		{object}	DailyEntryCreateResponse
// @Failure		404		{object}	DailyEntryCreateResponse
// @Failure		409		{object}	DailyEntryCreateResponse
// @Failure		500		{object}	DailyEntryCreateResponse
// @Param			entries	body		[]DailyEntryEditable	true	"Daily entries"
// @Router			/v1/entries [post]
func CreateDailyEntries(c *gin.Context) {
	var editables []DailyEntryEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	s := http.StatusCreated
	r := DailyEntryCreateResponse{}

	for _, editable := range editables {
		entry := editable.model()

		err := models.CreateDailyEntry(&entry, ledger.DefaultRiceRates())
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		data := newDailyEntry(c, entry)
		r.Data = append(r.Data, DailyEntryResponse{Data: &data})
	}

	c.JSON(s, r)
}

// @Summary		List daily entries
// @Description	Returns a list of daily entries, oldest date first
// @Tags			DailyEntries
// @Produce		json
// @Success		200	{object}	DailyEntryListResponse
// @Failure		400	{object}	DailyEntryListResponse
// @Failure		500	{object}	DailyEntryListResponse
// @Router			/v1/entries [get]
// @Param			school	query	string	false	"Filter by school ID"
// @Param			month	query	string	false	"Filter by month in YYYY-MM format"
// @Param			offset	query	uint	false	"The offset of the first entry returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of entries to return. Defaults to 50."
func GetDailyEntries(c *gin.Context) {
	var filter DailyEntryQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.Order("date ASC")

	if slices.Contains(setFields, "School") {
		id, err := httputil.UUIDFromString(filter.School)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), DailyEntryListResponse{
				Error: &e,
			})
			return
		}
		q = q.Where("school_id = ?", id)
	}

	if slices.Contains(setFields, "Month") {
		month, err := types.ParseMonth(filter.Month)
		if err != nil {
			e := httputil.ErrInvalidMonth.Error()
			c.JSON(http.StatusBadRequest, DailyEntryListResponse{
				Error: &e,
			})
			return
		}
		q = q.Where("date >= ? AND date <= ?", month.FirstDay(), month.LastDay())
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var entries []models.DailyEntry
	err := q.Find(&entries).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]DailyEntry, 0)
	for _, entry := range entries {
		apiResources = append(apiResources, newDailyEntry(c, entry))
	}

	c.JSON(http.StatusOK, DailyEntryListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get daily entry
// @Description	Returns a specific daily entry
// @Tags			DailyEntries
// @Produce		json
// @Success		200	{object}	DailyEntryResponse
// @Failure		400	{object}	DailyEntryResponse
// @Failure		404	{object}	DailyEntryResponse
// @Failure		500	{object}	DailyEntryResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/entries/{id} [get]
func GetDailyEntry(c *gin.Context) {
	entry, ok := getDailyEntryResource(c)
	if !ok {
		return
	}

	apiResource := newDailyEntry(c, entry)
	c.JSON(http.StatusOK, DailyEntryResponse{Data: &apiResource})
}

// @Summary		Update daily entry
// @Description	Update the served counts or remarks of an existing entry. The school and date cannot be changed. The month's running balances are recomputed.
// @Tags			DailyEntries
// @Accept			json
// @Produce		json
// @Success		200		{object}	DailyEntryResponse
// @Failure		400		{object}	DailyEntryResponse
// @Failure		404		{object}	DailyEntryResponse
// @Failure		409		{object}	DailyEntryResponse
// @Failure		500		{object}	DailyEntryResponse
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			entry	body		DailyEntryEditable	true	"Daily entry"
// @Router			/v1/entries/{id} [patch]
func UpdateDailyEntryEndpoint(c *gin.Context) {
	entry, ok := getDailyEntryResource(c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, DailyEntryEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryResponse{
			Error: &e,
		})
		return
	}

	var data DailyEntryEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryResponse{
			Error: &e,
		})
		return
	}

	// The school and date identify the entry and are never updated
	servedPrimary := entry.ServedPrimary
	if slices.Contains(updateFields, "ServedPrimary") {
		servedPrimary = data.ServedPrimary
	}

	servedMiddle := entry.ServedMiddle
	if slices.Contains(updateFields, "ServedMiddle") {
		servedMiddle = data.ServedMiddle
	}

	remarks := entry.Remarks
	if slices.Contains(updateFields, "Remarks") {
		remarks = data.Remarks
	}

	err = models.UpdateDailyEntry(&entry, servedPrimary, servedMiddle, remarks, ledger.DefaultRiceRates())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryResponse{
			Error: &e,
		})
		return
	}

	apiResource := newDailyEntry(c, entry)
	c.JSON(http.StatusOK, DailyEntryResponse{Data: &apiResource})
}

// @Summary		Delete daily entry
// @Description	Deletes a daily entry and recomputes the month's running balances. The date becomes available for a new entry.
// @Tags			DailyEntries
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/entries/{id} [delete]
func DeleteDailyEntryEndpoint(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	var entry models.DailyEntry
	err = models.DB.First(&entry, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DeleteDailyEntry(&entry)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// getDailyEntryResource binds the ID from the URI and loads the entry. On
// failure the error response has already been written.
func getDailyEntryResource(c *gin.Context) (models.DailyEntry, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryResponse{
			Error: &e,
		})
		return models.DailyEntry{}, false
	}

	var entry models.DailyEntry
	err = models.DB.First(&entry, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyEntryResponse{
			Error: &e,
		})
		return models.DailyEntry{}, false
	}

	return entry, true
}
