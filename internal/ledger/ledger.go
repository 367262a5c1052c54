// Package ledger implements the arithmetic for daily meal consumption.
//
// All functions are pure: they compute rice and monetary consumption from
// student counts and rates without touching any stored state. Validation of
// the inputs (non-negative counts, configured rates) happens upstream.
package ledger

import "github.com/shopspring/decimal"

// Section is a school's student population subdivision.
type Section string

const (
	SectionPrimary Section = "primary"
	SectionMiddle  Section = "middle"
)

// RiceRates holds the fixed per-student rice quantity in kg per day.
//
// These are set by the meal scheme, not by individual schools, but they are
// passed in explicitly so that alternate tables can be substituted.
type RiceRates struct {
	Primary decimal.Decimal
	Middle  decimal.Decimal
}

// DefaultRiceRates returns the scheme-mandated per-student rice quantities:
// 100g per primary student and 150g per middle student per day.
func DefaultRiceRates() RiceRates {
	return RiceRates{
		Primary: decimal.NewFromFloat(0.10),
		Middle:  decimal.NewFromFloat(0.15),
	}
}

// ForSection returns the rice rate for a section.
func (r RiceRates) ForSection(section Section) decimal.Decimal {
	if section == SectionMiddle {
		return r.Middle
	}

	return r.Primary
}

// IngredientRates holds a school's daily per-student cost for each
// ingredient of one section, in currency units.
type IngredientRates struct {
	Pulses     decimal.Decimal
	Vegetables decimal.Decimal
	Oil        decimal.Decimal
	Salt       decimal.Decimal
	Fuel       decimal.Decimal
}

// Total returns the sum of all five ingredient rates.
func (r IngredientRates) Total() decimal.Decimal {
	return r.Pulses.Add(r.Vegetables).Add(r.Oil).Add(r.Salt).Add(r.Fuel)
}

// AmountBreakdown is the per-ingredient monetary consumption for one entry
// and one section.
type AmountBreakdown struct {
	Pulses     decimal.Decimal `json:"pulses" example:"48.40"`
	Vegetables decimal.Decimal `json:"vegetables" example:"60.00"`
	Oil        decimal.Decimal `json:"oil" example:"20.40"`
	Salt       decimal.Decimal `json:"salt" example:"8.00"`
	Fuel       decimal.Decimal `json:"fuel" example:"16.00"`
	Total      decimal.Decimal `json:"total" example:"152.80"`
}

// RiceConsumption returns the rice consumed by a number of served students
// in kg, rounded to two decimal places. Zero students consume zero rice.
func RiceConsumption(servedStudents int64, rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(servedStudents)).Round(2)
}

// AmountConsumption returns the monetary consumption of a number of served
// students, per ingredient and in total. Every value carries two decimal
// places.
func AmountConsumption(servedStudents int64, rates IngredientRates) AmountBreakdown {
	served := decimal.NewFromInt(servedStudents)

	b := AmountBreakdown{
		Pulses:     rates.Pulses.Mul(served).Round(2),
		Vegetables: rates.Vegetables.Mul(served).Round(2),
		Oil:        rates.Oil.Mul(served).Round(2),
		Salt:       rates.Salt.Mul(served).Round(2),
		Fuel:       rates.Fuel.Mul(served).Round(2),
	}

	b.Total = b.Pulses.Add(b.Vegetables).Add(b.Oil).Add(b.Salt).Add(b.Fuel)
	return b
}
