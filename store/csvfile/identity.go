package csvfile

import (
	"io/ioutil"
	"strings"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/validator"
	"github.com/kirsrus/attendance/store"

	"github.com/juju/errors"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// IdentityHeader заголовок файла зарегистрированных карт
var IdentityHeader = []string{"uid", "name", "roll"}

// Identity хранилище зарегистрированных карт в CSV файле. Инициируется через NewIdentity.
// Записи загружаются в память вызовом Load и дальше ищутся только в памяти
type Identity struct {
	log       *logrus.Entry
	file      string
	validator *validator.Validator

	// Индекс UID -> model.Enrollee. Записи не устаревают
	index *cache.Cache
}

// ConfigIdentity конфигурация Identity
type ConfigIdentity struct {
	Log  *logrus.Logger
	File string
}

// NewIdentity конструктор Identity
func NewIdentity(config *ConfigIdentity) (store.IdentityStore, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if strings.TrimSpace(config.File) == "" {
		return nil, errors.New("не указан файл хранилища")
	}

	identity := Identity{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "identity",
			"scope":  "store",
			"file":   config.File,
		}),
		file:      config.File,
		validator: validator.Get(),
		index:     cache.New(cache.NoExpiration, 0),
	}
	return &identity, nil
}

// IsNotFound проверяет, что ошибка err обозначает, что карта не зарегистрирована
func (m *Identity) IsNotFound(err error) bool {
	return errors.IsNotFound(errors.Cause(err))
}

// Load читает файл хранилища (создавая его с заголовком при отсутствии) и заменяет
// загруженные ранее записи. Строки с пустым uid пропускаются. Имя "Unknown" получают только строки без колонки name;
// пустое значение в колонке сохраняется как есть
func (m *Identity) Load() (map[model.UID]model.Enrollee, error) {
	if err := ensureHeader(m.file, IdentityHeader); err != nil {
		return nil, errors.Trace(err)
	}
	rows, err := readRows(m.file)
	if err != nil {
		return nil, errors.Trace(err)
	}

	result := make(map[model.UID]model.Enrollee)
	if len(rows) > 0 {
		cols := newColumns(rows[0])
		if _, ok := cols["uid"]; !ok {
			m.log.Warnf("в заголовке нет колонки uid: %v", rows[0])
		}
		for _, row := range rows[1:] {
			enrollee, ok := m.parseRow(cols, row)
			if !ok {
				continue
			}
			if _, dup := result[enrollee.UID]; dup {
				m.log.Debugf("повторная регистрация карты %s, используется последняя запись", enrollee.UID)
			}
			result[enrollee.UID] = enrollee
		}
	}

	m.index.Flush()
	for uid, enrollee := range result {
		m.index.Set(uid.String(), enrollee, cache.NoExpiration)
	}
	m.log.Infof("загружено зарегистрированных карт: %d", len(result))
	return result, nil
}

// Разбор строки файла хранилища
func (m *Identity) parseRow(cols columns, row []string) (model.Enrollee, bool) {
	raw, _ := cols.get(row, "uid")
	uid := model.NewUID(raw)
	if uid.IsEmpty() {
		return model.Enrollee{}, false
	}
	enrollee := model.Unknown(uid)
	if name, ok := cols.get(row, "name"); ok {
		enrollee.Name = strings.TrimSpace(name)
	}
	if roll, ok := cols.get(row, "roll"); ok {
		enrollee.Roll = strings.TrimSpace(roll)
	}
	return enrollee, true
}

// Lookup получает владельца карты uid. Отсутствие проверяется через IsNotFound
func (m *Identity) Lookup(uid model.UID) (*model.Enrollee, error) {
	value, found := m.index.Get(model.NewUID(uid.String()).String())
	if !found {
		return nil, errors.NotFoundf("карта %s", uid)
	}
	enrollee := value.(model.Enrollee)
	return &enrollee, nil
}

// Add проверяет и дописывает владельца карты в конец файла. Запись сразу доступна через Lookup
func (m *Identity) Add(enrollee model.Enrollee) error {
	if err := m.validator.ValidateWithConform(&enrollee); err != nil {
		return errors.Annotatef(err, "ошибка валидации: %s", validator.Describe(err))
	}
	row := []string{enrollee.UID.String(), enrollee.Name, enrollee.Roll}
	if err := appendRows(m.file, IdentityHeader, row); err != nil {
		return errors.Trace(err)
	}
	m.index.Set(enrollee.UID.String(), enrollee, cache.NoExpiration)
	m.log.Infof("зарегистрирована карта %s (%s)", enrollee.UID, enrollee.Name)
	return nil
}

// Count количество загруженных записей
func (m *Identity) Count() int {
	return m.index.ItemCount()
}
