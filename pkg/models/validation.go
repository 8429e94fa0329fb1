package models

import (
	"github.com/go-playground/validator/v10"

	"github.com/arnavshah/shift-roster-go/pkg/roster"
)

// RegisterValidations adds the "daylist" and "shiftprefs" tags used by
// StaffInput to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("daylist", validDayList); err != nil {
		return err
	}
	return v.RegisterValidation("shiftprefs", validShiftPrefs)
}

func validDayList(fl validator.FieldLevel) bool {
	_, err := roster.ParseDays("", fl.Field().String())
	return err == nil
}

func validShiftPrefs(fl validator.FieldLevel) bool {
	_, err := roster.ParsePreferences("", fl.Field().String())
	return err == nil
}
