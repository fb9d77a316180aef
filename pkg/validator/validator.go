package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
)

var (
	valid Validator
	once  sync.Once
)

// Описания правил для сообщений оператору
var ruleDescription = map[string]string{
	"required": "обязательное поле",
	"uid":      "некорректный номер карты",
	"oneof":    "недопустимое значение",
}

// Validator валидатор записей и секций конфигурации. Инициализируется через NewValidator
type Validator struct {
	validator *validator.Validate
}

// NewValidator конструктор Validator с зарегистрированным правилом uid
func NewValidator() *Validator {
	v := Validator{
		validator: validator.New(),
	}
	if err := v.validator.RegisterValidation("uid", validatorUID); err != nil {
		panic(err)
	}
	return &v
}

// Validate проверка структуры без изменения данных (записи, которые уже сформированы программой)
func (m *Validator) Validate(i interface{}) error {
	return m.validator.Struct(i)
}

// ValidateWithConform нормализация строк по тегам conform и проверка структуры
// (данные, введённые оператором или прочитанные из файла конфигурации)
func (m *Validator) ValidateWithConform(i interface{}) error {
	if err := conform.Strings(i); err != nil {
		return err
	}
	return m.validator.Struct(i)
}

// Describe краткое описание ошибки валидации вида "Name: обязательное поле".
// Ошибки другого рода возвращаются текстом как есть
func Describe(err error) string {
	if err == nil {
		return ""
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		desc, found := ruleDescription[fe.Tag()]
		if !found {
			desc = fe.Tag()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), desc))
	}
	return strings.Join(parts, "; ")
}

// Get единожды инициализирует и возвращает валидатор
func Get() *Validator {
	once.Do(func() {
		valid = *NewValidator()
	})
	return &valid
}
