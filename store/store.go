package store

import (
	"github.com/kirsrus/attendance/model"
)

// IdentityStore хранилище зарегистрированных карт
//go:generate mockery --dir . --name IdentityStore --output ./mocks
type IdentityStore interface {
	// Проверяет, что ошибка err обозначает, что карта не зарегистрирована
	IsNotFound(err error) bool

	// Читает файл хранилища и возвращает соответствие UID -> владелец. Повторное чтение
	// неизменённого файла даёт то же соответствие
	Load() (map[model.UID]model.Enrollee, error)

	// Получает владельца карты по uid из загруженных данных. Отсутствие проверяется через IsNotFound
	Lookup(uid model.UID) (*model.Enrollee, error)

	// Добавляет владельца карты в конец файла хранилища
	Add(enrollee model.Enrollee) error

	// Количество загруженных записей
	Count() int
}

// EventLog журнал посещений. Записи только добавляются
//go:generate mockery --dir . --name EventLog --output ./mocks
type EventLog interface {
	// Добавляет запись в конец журнала. Заголовок пишется один раз, при пустом файле
	Append(record model.Attendance) error

	// Читает все записи журнала
	Records() ([]model.Attendance, error)
}
