package handlers

import (
	"sync"

	"hose_installation/internal/installation"
	"hose_installation/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// registerValidators adds the hose_position and connection_type rules to gin's validator.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("hose_position", func(fl validator.FieldLevel) bool {
			return installation.KnownPosition(fl.Field().String())
		})
		_ = v.RegisterValidation("connection_type", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case models.ConnectionSingleActing, models.ConnectionDoubleActing,
				models.ConnectionHighFlow, models.ConnectionLowFlow:
				return true
			}
			return false
		})
	})
}
