package csvfile

import (
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/kirsrus/attendance/model"
	"github.com/kirsrus/attendance/pkg/validator"
	"github.com/kirsrus/attendance/store"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

// EventLogHeader заголовок журнала посещений
var EventLogHeader = []string{"timestamp", "uid", "name", "roll", "status"}

// EventLog журнал посещений в CSV файле. Инициируется через NewEventLog. Каждая запись
// дописывается одной операцией записи, файл между записями не держится открытым
type EventLog struct {
	log       *logrus.Entry
	file      string
	validator *validator.Validator
}

// ConfigEventLog конфигурация EventLog
type ConfigEventLog struct {
	Log  *logrus.Logger
	File string
}

// NewEventLog конструктор EventLog
func NewEventLog(config *ConfigEventLog) (store.EventLog, error) {
	if config == nil {
		return nil, errors.New("не указана конфигурация")
	}
	if config.Log == nil {
		config.Log = logrus.New()
		config.Log.Out = ioutil.Discard
	}
	if strings.TrimSpace(config.File) == "" {
		return nil, errors.New("не указан файл журнала")
	}

	eventLog := EventLog{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "eventlog",
			"scope":  "store",
			"file":   config.File,
		}),
		file:      config.File,
		validator: validator.Get(),
	}
	return &eventLog, nil
}

// Append дописывает запись record в журнал
func (m *EventLog) Append(record model.Attendance) error {
	if err := m.validator.Validate(&record); err != nil {
		return errors.Annotatef(err, "некорректная запись посещения: %s", validator.Describe(err))
	}
	if err := appendRows(m.file, EventLogHeader, record.Row()); err != nil {
		m.log.Error(err)
		return errors.Trace(err)
	}
	m.log.Debugf("записано посещение %s (%s)", record.UID, record.Name)
	return nil
}

// Records читает все записи журнала. Отсутствующий файл даёт пустой журнал
func (m *EventLog) Records() ([]model.Attendance, error) {
	if _, err := os.Stat(m.file); err != nil && os.IsNotExist(err) {
		return make([]model.Attendance, 0), nil
	}
	rows, err := readRows(m.file)
	if err != nil {
		return nil, errors.Trace(err)
	}

	result := make([]model.Attendance, 0)
	if len(rows) == 0 {
		return result, nil
	}
	cols := newColumns(rows[0])
	for idx, row := range rows[1:] {
		rawTime, _ := cols.get(row, "timestamp")
		ts, err := time.ParseInLocation(model.TimestampLayout, strings.TrimSpace(rawTime), time.Local)
		if err != nil {
			return nil, errors.Annotatef(err, "некорректное время в строке %d журнала", idx+2)
		}
		uid, _ := cols.get(row, "uid")
		name, _ := cols.get(row, "name")
		roll, _ := cols.get(row, "roll")
		status, _ := cols.get(row, "status")
		result = append(result, model.Attendance{
			Timestamp: ts,
			UID:       model.NewUID(uid),
			Name:      name,
			Roll:      roll,
			Status:    model.Status(strings.TrimSpace(status)),
		})
	}
	return result, nil
}
