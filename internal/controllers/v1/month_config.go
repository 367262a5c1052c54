package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdm-tracker/backend/internal/httputil"
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/internal/types"
	"golang.org/x/exp/slices"
)

// RegisterMonthConfigRoutes registers the routes for month configurations
// with the RouterGroup that is passed.
func RegisterMonthConfigRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsMonthConfigList)
		r.GET("", GetMonthConfigs)
		r.POST("", CreateMonthConfigs)
	}

	// MonthConfig with ID
	{
		r.OPTIONS("/:id", OptionsMonthConfigDetail)
		r.GET("/:id", GetMonthConfig)
		r.PATCH("/:id", UpdateMonthConfigEndpoint)

		r.POST("/:id/lock", LockMonthConfig)
		r.POST("/:id/complete", CompleteMonthConfig)
		r.POST("/:id/next", CreateNextMonthConfig)

		r.OPTIONS("/:id/rice-additions", OptionsRiceAdditions)
		r.GET("/:id/rice-additions", GetRiceAdditions)
		r.POST("/:id/rice-additions", CreateRiceAddition)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MonthConfigs
// @Success		204
// @Router			/v1/month-configs [options]
func OptionsMonthConfigList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MonthConfigs
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id} [options]
func OptionsMonthConfigDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var config models.MonthConfig
	err = models.DB.First(&config, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatch(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			MonthConfigs
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id}/rice-additions [options]
func OptionsRiceAdditions(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var config models.MonthConfig
	err = models.DB.First(&config, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPost(c)
}

// @Summary		Create month configurations
// @Description	Creates new month configurations
// @Tags			MonthConfigs
// @Accept			json
// @Produce		json
// @Success		201		{object}	MonthConfigCreateResponse
// @Failure		400		{object}	MonthConfigCreateResponse
// @Failure		404		{object}	MonthConfigCreateResponse
// @Failure		500		{object}	MonthConfigCreateResponse
// @Param			configs	body		[]MonthConfigEditable	true	"Month configurations"
// @Router			/v1/month-configs [post]
func CreateMonthConfigs(c *gin.Context) {
	var editables []MonthConfigEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	s := http.StatusCreated
	r := MonthConfigCreateResponse{}

	for _, editable := range editables {
		config := editable.model()

		err := models.DB.Create(&config).Error
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		data := newMonthConfig(c, config)
		r.Data = append(r.Data, MonthConfigResponse{Data: &data})
	}

	c.JSON(s, r)
}

// @Summary		List month configurations
// @Description	Returns a list of month configurations
// @Tags			MonthConfigs
// @Produce		json
// @Success		200	{object}	MonthConfigListResponse
// @Failure		400	{object}	MonthConfigListResponse
// @Failure		500	{object}	MonthConfigListResponse
// @Router			/v1/month-configs [get]
// @Param			school	query	string	false	"Filter by school ID"
// @Param			month	query	string	false	"Filter by month in YYYY-MM format"
// @Param			offset	query	uint	false	"The offset of the first configuration returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of configurations to return. Defaults to 50."
func GetMonthConfigs(c *gin.Context) {
	var filter MonthConfigQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	_, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var where models.MonthConfig

	if slices.Contains(setFields, "School") {
		id, err := httputil.UUIDFromString(filter.School)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), MonthConfigListResponse{
				Error: &e,
			})
			return
		}
		where.SchoolID = id
	}

	if slices.Contains(setFields, "Month") {
		month, err := types.ParseMonth(filter.Month)
		if err != nil {
			e := httputil.ErrInvalidMonth.Error()
			c.JSON(http.StatusBadRequest, MonthConfigListResponse{
				Error: &e,
			})
			return
		}
		where.Month = month
	}

	var configs []models.MonthConfig

	// Always sort by month, newest first
	q := models.DB.
		Order("month DESC").
		Where(&where)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	err := q.Find(&configs).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigListResponse{
			Error: &e,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]MonthConfig, 0)
	for _, config := range configs {
		apiResources = append(apiResources, newMonthConfig(c, config))
	}

	c.JSON(http.StatusOK, MonthConfigListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get month configuration
// @Description	Returns a specific month configuration
// @Tags			MonthConfigs
// @Produce		json
// @Success		200	{object}	MonthConfigResponse
// @Failure		400	{object}	MonthConfigResponse
// @Failure		404	{object}	MonthConfigResponse
// @Failure		500	{object}	MonthConfigResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id} [get]
func GetMonthConfig(c *gin.Context) {
	config, ok := getMonthConfigResource(c)
	if !ok {
		return
	}

	apiResource := newMonthConfig(c, config)
	c.JSON(http.StatusOK, MonthConfigResponse{Data: &apiResource})
}

// @Summary		Update month configuration
// @Description	Update rates, note or opening balances of an existing month configuration. The school and month cannot be changed. All derived entry balances are recomputed.
// @Tags			MonthConfigs
// @Accept			json
// @Produce		json
// @Success		200		{object}	MonthConfigResponse
// @Failure		400		{object}	MonthConfigResponse
// @Failure		404		{object}	MonthConfigResponse
// @Failure		409		{object}	MonthConfigResponse
// @Failure		500		{object}	MonthConfigResponse
// @Param			id		path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			config	body		MonthConfigEditable	true	"Month configuration"
// @Router			/v1/month-configs/{id} [patch]
func UpdateMonthConfigEndpoint(c *gin.Context) {
	config, ok := getMonthConfigResource(c)
	if !ok {
		return
	}

	updateFields, err := httputil.GetBodyFields(c, MonthConfigEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return
	}

	var data MonthConfigEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return
	}

	// The school and month of a configuration are fixed on creation,
	// they identify the resource and are never updated
	if slices.Contains(updateFields, "Note") {
		config.Note = data.Note
	}
	if slices.Contains(updateFields, "RatesPrimary") {
		config.RatesPrimary = data.RatesPrimary
	}
	if slices.Contains(updateFields, "RatesMiddle") {
		config.RatesMiddle = data.RatesMiddle
	}
	if slices.Contains(updateFields, "Condiments") {
		config.Condiments = data.Condiments
	}
	if slices.Contains(updateFields, "OpeningBalancePrimary") {
		config.OpeningBalancePrimary = data.OpeningBalancePrimary
	}
	if slices.Contains(updateFields, "OpeningBalanceMiddle") {
		config.OpeningBalanceMiddle = data.OpeningBalanceMiddle
	}

	err = models.UpdateMonthConfig(&config)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return
	}

	apiResource := newMonthConfig(c, config)
	c.JSON(http.StatusOK, MonthConfigResponse{Data: &apiResource})
}

// @Summary		Toggle the month lock
// @Description	Locks an unlocked month or unlocks a locked one. A locked month rejects changes to its daily entries, stock additions stay possible.
// @Tags			MonthConfigs
// @Produce		json
// @Success		200	{object}	MonthConfigResponse
// @Failure		400	{object}	MonthConfigResponse
// @Failure		404	{object}	MonthConfigResponse
// @Failure		409	{object}	MonthConfigResponse
// @Failure		500	{object}	MonthConfigResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id}/lock [post]
func LockMonthConfig(c *gin.Context) {
	config, ok := getMonthConfigResource(c)
	if !ok {
		return
	}

	err := config.ToggleLock(models.DB)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return
	}

	apiResource := newMonthConfig(c, config)
	c.JSON(http.StatusOK, MonthConfigResponse{Data: &apiResource})
}

// @Summary		Complete the month
// @Description	Runs a final recomputation of the month's entries and marks the month as completed. A completed month is immutable.
// @Tags			MonthConfigs
// @Produce		json
// @Success		200	{object}	MonthConfigResponse
// @Failure		400	{object}	MonthConfigResponse
// @Failure		404	{object}	MonthConfigResponse
// @Failure		409	{object}	MonthConfigResponse
// @Failure		500	{object}	MonthConfigResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id}/complete [post]
func CompleteMonthConfig(c *gin.Context) {
	config, ok := getMonthConfigResource(c)
	if !ok {
		return
	}

	err := models.CompleteMonth(&config)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return
	}

	apiResource := newMonthConfig(c, config)
	c.JSON(http.StatusOK, MonthConfigResponse{Data: &apiResource})
}

// @Summary		Create the following month
// @Description	Creates the configuration for the month after a completed one. Rates and condiments are carried over, the opening balances are set to the completed month's closing balances, including deficits.
// @Tags			MonthConfigs
// @Produce		json
// @Success		201	{object}	MonthConfigResponse
// @Failure		400	{object}	MonthConfigResponse
// @Failure		404	{object}	MonthConfigResponse
// @Failure		409	{object}	MonthConfigResponse
// @Failure		500	{object}	MonthConfigResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id}/next [post]
func CreateNextMonthConfig(c *gin.Context) {
	config, ok := getMonthConfigResource(c)
	if !ok {
		return
	}

	next, err := models.CreateNextMonth(config)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return
	}

	apiResource := newMonthConfig(c, next)
	c.JSON(http.StatusCreated, MonthConfigResponse{Data: &apiResource})
}

// @Summary		Record a stock addition
// @Description	Records rice added to a section of the month, either lifted through the supply channel or arranged from another source. The month's running balances are recomputed.
// @Tags			MonthConfigs
// @Accept			json
// @Produce		json
// @Success		201			{object}	RiceAdditionResponse
// @Failure		400			{object}	RiceAdditionResponse
// @Failure		404			{object}	RiceAdditionResponse
// @Failure		409			{object}	RiceAdditionResponse
// @Failure		500			{object}	RiceAdditionResponse
// @Param			id			path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			addition	body		RiceAdditionEditable	true	"Stock addition"
// @Router			/v1/month-configs/{id}/rice-additions [post]
func CreateRiceAddition(c *gin.Context) {
	var config models.MonthConfig
	{
		var uri URIID
		err := c.ShouldBindUri(&uri)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), RiceAdditionResponse{
				Error: &e,
			})
			return
		}

		err = models.DB.First(&config, uri.ID.UUID).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), RiceAdditionResponse{
				Error: &e,
			})
			return
		}
	}

	var editable RiceAdditionEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiceAdditionResponse{
			Error: &e,
		})
		return
	}

	addition, err := models.AddRice(&config, editable.Section, editable.Source, editable.Amount, editable.Note)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiceAdditionResponse{
			Error: &e,
		})
		return
	}

	apiResource := newRiceAddition(addition)
	c.JSON(http.StatusCreated, RiceAdditionResponse{Data: &apiResource})
}

// @Summary		List stock additions
// @Description	Returns the month's stock additions, oldest first
// @Tags			MonthConfigs
// @Produce		json
// @Success		200	{object}	RiceAdditionListResponse
// @Failure		400	{object}	RiceAdditionListResponse
// @Failure		404	{object}	RiceAdditionListResponse
// @Failure		500	{object}	RiceAdditionListResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/month-configs/{id}/rice-additions [get]
func GetRiceAdditions(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiceAdditionListResponse{
			Error: &e,
		})
		return
	}

	var config models.MonthConfig
	err = models.DB.First(&config, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiceAdditionListResponse{
			Error: &e,
		})
		return
	}

	var additions []models.RiceAddition
	err = models.DB.
		Where(&models.RiceAddition{MonthConfigID: config.ID}).
		Order("created_at ASC").
		Find(&additions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RiceAdditionListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]RiceAddition, 0)
	for _, addition := range additions {
		apiResources = append(apiResources, newRiceAddition(addition))
	}

	c.JSON(http.StatusOK, RiceAdditionListResponse{Data: apiResources})
}

// getMonthConfigResource binds the ID from the URI and loads the month
// configuration. On failure the error response has already been written.
func getMonthConfigResource(c *gin.Context) (models.MonthConfig, bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return models.MonthConfig{}, false
	}

	var config models.MonthConfig
	err = models.DB.First(&config, uri.ID.UUID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthConfigResponse{
			Error: &e,
		})
		return models.MonthConfig{}, false
	}

	return config, true
}
