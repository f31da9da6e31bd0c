package payment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/thinkwise/core"
)

var (
	methodTag  = "paymentmethod"
	methodText = "invalid payment method: expected one of CARTA_DI_CREDITO, CARTA, BONIFICO, CONTANTI, PAYPAL"
)

// InitValidators registers the payment method tag.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(methodTag, func(fl validator.FieldLevel) bool {
		return Method(fl.Field().String()).IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, methodTag, methodText)
}
