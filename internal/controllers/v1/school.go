package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdm-tracker/backend/internal/httputil"
	"github.com/mdm-tracker/backend/internal/models"
	"golang.org/x/exp/slices"
)

// RegisterSchoolRoutes registers the routes for schools with
// the RouterGroup that is passed.
func RegisterSchoolRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsSchoolList)
		r.GET("", GetSchools)
		r.POST("", CreateSchools)
	}

	// School with ID
	{
		r.OPTIONS("/:id", OptionsSchoolDetail)
		r.GET("/:id", GetSchool)
		r.PATCH("/:id", UpdateSchool)
		r.DELETE("/:id", DeleteSchool)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Schools
// @Success		204
// @Router			/v1/schools [options]
func OptionsSchoolList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Schools
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/schools/{id} [options]
func OptionsSchoolDetail(c *gin.Context) {
	resourceOptionsDetail(c, models.School{})
}

// @Summary		Create schools
// @Description	Creates new schools
// @Tags			Schools
// @Accept			json
// @Produce		json
// @Success		201		{object}	SchoolCreateResponse
// @Failure		400		{object}	SchoolCreateResponse
// @Failure		500		{object}	SchoolCreateResponse
// @Param			schools	body		[]SchoolEditable	true	"Schools"
// @Router			/v1/schools [post]
func CreateSchools(c *gin.Context) {
	var schools []SchoolEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &schools)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SchoolCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	s := http.StatusCreated
	r := SchoolCreateResponse{}

	for _, editable := range schools {
		school := editable.model()

		err := models.DB.Create(&school).Error
		if err != nil {
			s = r.appendError(err, s)
			continue
		}

		data := newSchool(c, school)
		r.Data = append(r.Data, SchoolResponse{Data: &data})
	}

	c.JSON(s, r)
}

// @Summary		List schools
// @Description	Returns a list of schools
// @Tags			Schools
// @Produce		json
// @Success		200	{object}	SchoolListResponse
// @Failure		500	{object}	SchoolListResponse
// @Router			/v1/schools [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			note	query	string	false	"Filter by note"
// @Param			type	query	string	false	"Filter by school type"
// @Param			search	query	string	false	"Search for this text in name and note"
// @Param			offset	query	uint	false	"The offset of the first school returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of schools to return. Defaults to 50."
func GetSchools(c *gin.Context) {
	var filter SchoolQueryFilter

	// Every parameter is bound into a string, so this will always succeed
	_ = c.Bind(&filter)

	// Get the fields that we're filtering for
	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	var schools []models.School

	// Always sort by name
	q := models.DB.
		Order("name ASC").
		Where(filter.model(), queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to all schools and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	err := q.Find(&schools).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SchoolListResponse{
			Error: &e,
		})
		return
	}

	apiResources := make([]School, 0)
	for _, school := range schools {
		apiResources = append(apiResources, newSchool(c, school))
	}

	c.JSON(http.StatusOK, SchoolListResponse{
		Data: apiResources,
		Pagination: &Pagination{
			Count:  len(apiResources),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get school
// @Description	Returns a specific school
// @Tags			Schools
// @Produce		json
// @Success		200	{object}	SchoolResponse
// @Failure		400	{object}	SchoolResponse
// @Failure		404	{object}	SchoolResponse
// @Failure		500	{object}	SchoolResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/schools/{id} [get]
func GetSchool(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	var school models.School
	err = models.DB.First(&school, uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	apiResource := newSchool(c, school)
	c.JSON(http.StatusOK, SchoolResponse{Data: &apiResource})
}

// @Summary		Update school
// @Description	Update an existing school. Only values to be updated need to be specified.
// @Tags			Schools
// @Accept			json
// @Produce		json
// @Success		200		{object}	SchoolResponse
// @Failure		400		{object}	SchoolResponse
// @Failure		404		{object}	SchoolResponse
// @Failure		500		{object}	SchoolResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			school	body		SchoolEditable	true	"School"
// @Router			/v1/schools/{id} [patch]
func UpdateSchool(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	var school models.School
	err = models.DB.First(&school, uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, SchoolEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	var data SchoolEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	err = models.DB.Model(&school).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SchoolResponse{
			Error: &s,
		})
		return
	}

	apiResource := newSchool(c, school)
	c.JSON(http.StatusOK, SchoolResponse{Data: &apiResource})
}

// @Summary		Delete school
// @Description	Deletes a school
// @Tags			Schools
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/schools/{id} [delete]
func DeleteSchool(c *gin.Context) {
	deleteResource[models.School](c)
}
