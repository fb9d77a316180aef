package model

// UnknownName имя, показываемое и записываемое для незарегистрированной карты
const UnknownName = "Unknown"

// Enrollee описывает зарегистрированного владельца карты
type Enrollee struct {
	// Идентификатор карты (ключ в хранилище)
	UID UID `conform:"trim" validate:"uid"`
	// Имя
	Name string `conform:"trim" validate:"required"`
	// Номер в списке группы (может быть пустым)
	Roll string `conform:"trim"`
}

// Unknown запись для карты, отсутствующей в хранилище
func Unknown(uid UID) Enrollee {
	return Enrollee{UID: uid, Name: UnknownName}
}
