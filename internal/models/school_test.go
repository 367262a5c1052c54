package models_test

import (
	"strings"
	"testing"

	"github.com/mdm-tracker/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestSchoolTrimWhitespace() {
	name := " Govt. Primary School Rampur  "
	note := " The school with whitespace    "

	school := suite.createTestSchool(models.School{
		Name: name,
		Note: note,
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), school.Name)
	assert.Equal(suite.T(), strings.TrimSpace(note), school.Note)
}

func (suite *TestSuiteStandard) TestSchoolTypeDefault() {
	school := suite.createTestSchool(models.School{})

	assert.Equal(suite.T(), models.SchoolTypePrimary, school.Type)
	assert.True(suite.T(), school.NeedsPrimary())
	assert.False(suite.T(), school.NeedsMiddle())
}

func (suite *TestSuiteStandard) TestSchoolTypeInvalid() {
	school := models.School{
		Name: "Type testing school",
		Type: "secondary",
	}

	err := models.DB.Create(&school).Error
	assert.ErrorIs(suite.T(), err, models.ErrSchoolTypeInvalid)
}

func (suite *TestSuiteStandard) TestSchoolSections() {
	tests := []struct {
		schoolType models.SchoolType
		primary    bool
		middle     bool
	}{
		{models.SchoolTypePrimary, true, false},
		{models.SchoolTypeMiddle, false, true},
		{models.SchoolTypePrimaryMiddle, true, true},
	}

	for _, tt := range tests {
		suite.T().Run(string(tt.schoolType), func(t *testing.T) {
			school := models.School{Type: tt.schoolType}

			assert.Equal(t, tt.primary, school.NeedsPrimary())
			assert.Equal(t, tt.middle, school.NeedsMiddle())
		})
	}
}

func (suite *TestSuiteStandard) TestSchoolNameNotUnique() {
	_ = suite.createTestSchool(models.School{Name: "Unique School"})

	school := models.School{Name: "Unique School"}
	err := models.DB.Create(&school).Error

	assert.ErrorIs(suite.T(), err, models.ErrSchoolNameNotUnique)
}
