package catalog

import (
	"github.com/go-playground/validator/v10"

	"github.com/kymoh/darasa/core"
)

var (
	roleTag  = "role"
	roleText = "invalid role"
)

func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(roleTag, roleText)
}

func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}
