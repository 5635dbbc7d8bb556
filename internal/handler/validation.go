package handler

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/project-planner/backend/internal/domain"
)

// registerCustomValidations 注册 skillname 标签，用于校验技能名和任务类别
func registerCustomValidations(validate *validator.Validate, trans ut.Translator) error {
	if err := validate.RegisterValidation("skillname", func(fl validator.FieldLevel) bool {
		return domain.ValidateProfileKey(fl.Field().String()) == nil
	}); err != nil {
		return err
	}

	return validate.RegisterTranslation("skillname", trans,
		func(ut ut.Translator) error {
			return ut.Add("skillname", "{0}必须是合法的名称，只能包含字母、数字、空格和 +#./_-", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("skillname", fe.Field())
			return t
		},
	)
}
