package controller

import (
	"context"

	"github.com/kirsrus/attendance/model"
)

// CardReaderCtl контроллер считывателя карт, скрывающий способ опроса конкретного считывателя
//go:generate mockery --dir . --name CardReaderCtl --output ./mocks
type CardReaderCtl interface {
	// Ожидает карту без ограничения по времени и возвращает её идентификатор.
	// Ошибка возвращается только при отмене ctx
	AcquireUID(ctx context.Context) (model.UID, error)
	// Ожидает, пока карту уберут от считывателя. Отсутствие сигнала снятия решается таймаутом.
	// Ошибка возвращается только при отмене ctx
	WaitRemoved(ctx context.Context) error
}
