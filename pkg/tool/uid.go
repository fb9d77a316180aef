package tool

import (
	"math/big"

	"github.com/kirsrus/attendance/model"
)

// UIDFromBytes преобразует байты идентификатора карты raw в десятичное число
// (старший байт первый). Пустой raw даёт пустой UID
func UIDFromBytes(raw []byte) model.UID {
	if len(raw) == 0 {
		return ""
	}
	return model.UID(new(big.Int).SetBytes(raw).String())
}
