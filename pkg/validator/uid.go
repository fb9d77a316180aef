package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Символы, недопустимые в идентификаторе карты (ломают строку CSV)
const uidForbidden = ",\"\x00"

// Валидатор идентификатора карты: непустой, без пробельных символов, запятых и кавычек
func validatorUID(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	uid := field.String()
	if uid == "" {
		return false
	}
	if strings.ContainsAny(uid, uidForbidden) {
		return false
	}
	return !strings.ContainsAny(uid, " \t\r\n")
}
