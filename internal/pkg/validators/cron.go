package validators

import (
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CronExprValidation validates a standard five field cron expression or a descriptor such as @daily.
func CronExprValidation(fl validator.FieldLevel) bool {
	expr := fl.Field().String()
	if expr == "" {
		return false
	}
	_, err := cron.ParseStandard(expr)
	return err == nil
}
