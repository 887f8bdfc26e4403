package validator

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("hhmm", validateClock)
	_ = v.RegisterValidation("date", validateDate)
	_ = v.RegisterValidation("weekday", validateWeekday)
	_ = v.RegisterValidation("timezone", validateTimezone)

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "min":
				errors[field] = field + " must be at least " + e.Param()
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "uuid":
				errors[field] = field + " must be a valid UUID"
			case "hhmm":
				errors[field] = field + " must be a time in HH:MM (24h) format"
			case "date":
				errors[field] = field + " must be a date in YYYY-MM-DD format"
			case "weekday":
				errors[field] = field + " must be a weekday name"
			case "timezone":
				errors[field] = field + " must be an IANA timezone"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len(clockLayout) {
		return false
	}
	_, err := time.Parse(clockLayout, s)
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}

// validateWeekday accepts full names and three-letter abbreviations.
func validateWeekday(fl validator.FieldLevel) bool {
	s := strings.ToLower(fl.Field().String())
	if len(s) == 3 {
		for name := range weekdays {
			if strings.HasPrefix(name, s) {
				return true
			}
		}
		return false
	}
	return weekdays[s]
}

func validateTimezone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s == "Local" {
		return false
	}
	_, err := time.LoadLocation(s)
	return err == nil
}
