package csvfile

import (
	"bytes"
	"encoding/csv"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/juju/errors"
)

// Права на создаваемые файлы хранилищ
const fileMode = 0644

// Проверяет, что файл отсутствует или пуст
func isEmptyFile(file string) (bool, error) {
	info, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, errors.Trace(err)
	}
	return info.Size() == 0, nil
}

// Кодирует строки rows в CSV
func encodeRows(rows ...[]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Annotate(err, "ошибка формирования CSV")
	}
	return buf.Bytes(), nil
}

// Дописывает в конец файла строки rows одной операцией записи. Если файл отсутствует или пуст,
// перед строками пишется заголовок header
func appendRows(file string, header []string, rows ...[]string) error {
	empty, err := isEmptyFile(file)
	if err != nil {
		return errors.Trace(err)
	}
	if empty {
		rows = append([][]string{header}, rows...)
	}
	content, err := encodeRows(rows...)
	if err != nil {
		return errors.Trace(err)
	}
	if !empty {
		// Файл, отредактированный вручную, может не заканчиваться переводом строки
		last, err := lastByte(file)
		if err != nil {
			return errors.Trace(err)
		}
		if last != '\n' {
			content = append([]byte{'\n'}, content...)
		}
	}

	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return errors.Annotatef(err, "ошибка открытия %s", file)
	}
	if _, err = f.Write(content); err != nil {
		_ = f.Close()
		return errors.Annotatef(err, "ошибка записи в %s", file)
	}
	return errors.Trace(f.Close())
}

// Последний байт непустого файла
func lastByte(file string) (byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, errors.Trace(err)
	}
	defer func() { _ = f.Close() }()
	if _, err = f.Seek(-1, io.SeekEnd); err != nil {
		return 0, errors.Trace(err)
	}
	b := make([]byte, 1)
	if _, err = io.ReadFull(f, b); err != nil {
		return 0, errors.Trace(err)
	}
	return b[0], nil
}

// Создаёт файл с заголовком header, если его нет или он пуст
func ensureHeader(file string, header []string) error {
	empty, err := isEmptyFile(file)
	if err != nil {
		return errors.Trace(err)
	}
	if !empty {
		return nil
	}
	content, err := encodeRows(header)
	if err != nil {
		return errors.Trace(err)
	}
	if err = ioutil.WriteFile(file, content, fileMode); err != nil {
		return errors.Annotatef(err, "ошибка создания %s", file)
	}
	return nil
}

// Читает все строки CSV из файла, удаляя нулевые байты. Пустые строки пропускаются
func readRows(file string) ([][]string, error) {
	content, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Annotatef(err, "ошибка чтения %s", file)
	}
	content = bytes.ReplaceAll(content, []byte{0}, nil)
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Annotatef(err, "некорректный CSV в %s", file)
	}
	return rows, nil
}

// Соответствие имени колонки её номеру
type columns map[string]int

func newColumns(header []string) columns {
	res := make(columns, len(header))
	for idx, name := range header {
		res[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = idx
	}
	return res
}

// Значение колонки name в строке row. ok=false, если колонки нет в заголовке или строка короче
func (m columns) get(row []string, name string) (value string, ok bool) {
	idx, found := m[name]
	if !found || idx >= len(row) {
		return "", false
	}
	return row[idx], true
}
