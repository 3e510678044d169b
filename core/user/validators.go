package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ripoti/core"
)

var (
	portalRoleTag  = "portalrole"
	portalRoleText = "must be one of: student, teacher, admin"
)

func init() {
	InitValidators(core.Validate, core.Translator)
}

// InitValidators registers user-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(portalRoleTag, portalRoleValidation)
	core.RegisterCustomTranslation(validate, translator, portalRoleTag, portalRoleText)
}

func portalRoleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}
