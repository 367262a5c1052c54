package models_test

import (
	"github.com/mdm-tracker/backend/internal/models"
	"github.com/mdm-tracker/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestConnectInvalidPath() {
	err := models.Connect("/does-not/exist/database.db")
	assert.NotNil(suite.T(), err)

	// Reconnect so that TearDownTest has a database to close
	assert.Nil(suite.T(), models.Connect(test.TmpFile(suite.T())))
}

func (suite *TestSuiteStandard) TestClosedDatabase() {
	suite.CloseDB()

	school := models.School{Name: "School on a closed database"}
	err := models.DB.Create(&school).Error

	assert.ErrorIs(suite.T(), err, models.ErrGeneral)
}
