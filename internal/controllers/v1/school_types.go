package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mdm-tracker/backend/internal/models"
)

type SchoolEditable struct {
	Name string            `json:"name" example:"GPS Rampur" default:""`                                       // Name of the school
	Type models.SchoolType `json:"type" example:"primary_middle" default:"primary"`                            // Which sections the school serves
	Note string            `json:"note" example:"Cluster 4, block headquarters" default:""`                    // A note
}

// model returns the database resource for the API representation of the editable fields
func (editable SchoolEditable) model() models.School {
	return models.School{
		Name: editable.Name,
		Type: editable.Type,
		Note: editable.Note,
	}
}

type SchoolLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/schools/d1b4a4a6-5b5e-4f1a-b2c3-2f8a5a7d9e10"`              // The school itself
	MonthConfigs string `json:"monthConfigs" example:"https://example.com/api/v1/month-configs?school=d1b4a4a6-5b5e-4f1a-b2c3"`      // The school's month configurations
	Entries      string `json:"entries" example:"https://example.com/api/v1/entries?school=d1b4a4a6-5b5e-4f1a-b2c3-2f8a5a7d9e10"`   // The school's daily entries
}

// School is the API representation of a school.
type School struct {
	models.DefaultModel
	SchoolEditable
	Links SchoolLinks `json:"links"`
}

func newSchool(c *gin.Context, model models.School) School {
	url := c.GetString(string(models.DBContextURL))

	return School{
		DefaultModel: model.DefaultModel,
		SchoolEditable: SchoolEditable{
			Name: model.Name,
			Type: model.Type,
			Note: model.Note,
		},
		Links: SchoolLinks{
			Self:         fmt.Sprintf("%s/v1/schools/%s", url, model.ID),
			MonthConfigs: fmt.Sprintf("%s/v1/month-configs?school=%s", url, model.ID),
			Entries:      fmt.Sprintf("%s/v1/entries?school=%s", url, model.ID),
		},
	}
}

type SchoolListResponse struct {
	Data       []School    `json:"data"`                                                          // List of schools
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type SchoolCreateResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []SchoolResponse `json:"data"`                                                          // List of created schools
}

func (s *SchoolCreateResponse) appendError(err error, currentStatus int) int {
	e := err.Error()
	s.Data = append(s.Data, SchoolResponse{Error: &e})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type SchoolResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this school
	Data  *School `json:"data"`                                                          // The school data, if the request was successful
}

type SchoolQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // Filter by name
	Note   string `form:"note" filterField:"false"`   // Filter by note
	Type   string `form:"type"`                       // Filter by school type
	Search string `form:"search" filterField:"false"` // Search for this text in name and note
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first school returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of schools to return. Defaults to 50.
}

func (f SchoolQueryFilter) model() models.School {
	return models.School{
		Type: models.SchoolType(f.Type),
	}
}
