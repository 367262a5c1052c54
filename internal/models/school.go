package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// SchoolType determines which sections a school serves meals to.
type SchoolType string

const (
	SchoolTypePrimary       SchoolType = "primary"
	SchoolTypeMiddle        SchoolType = "middle"
	SchoolTypePrimaryMiddle SchoolType = "primary_middle"
)

// School represents a school reporting mid-day-meal consumption.
type School struct {
	DefaultModel
	Name string     `gorm:"uniqueIndex"`
	Type SchoolType `gorm:"default:primary"`
	Note string
}

var (
	ErrSchoolNameNotUnique = errors.New("the school name must be unique")
	ErrSchoolTypeInvalid   = errors.New("the school type must be one of 'primary', 'middle' or 'primary_middle'")
)

// NeedsPrimary reports whether the school serves a primary section.
func (s School) NeedsPrimary() bool {
	return s.Type == SchoolTypePrimary || s.Type == SchoolTypePrimaryMiddle
}

// NeedsMiddle reports whether the school serves a middle section.
func (s School) NeedsMiddle() bool {
	return s.Type == SchoolTypeMiddle || s.Type == SchoolTypePrimaryMiddle
}

// BeforeSave trims whitespace and verifies the school type.
func (s *School) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Note = strings.TrimSpace(s.Note)

	if s.Type == "" {
		s.Type = SchoolTypePrimary
	}

	switch s.Type {
	case SchoolTypePrimary, SchoolTypeMiddle, SchoolTypePrimaryMiddle:
		return nil
	}

	return ErrSchoolTypeInvalid
}
