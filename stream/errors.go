package stream

import (
	"errors"
	"fmt"

	"github.com/BreadYang/scrape-social-media-in-area/frame"
	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// ErrStreamClosed — транспорт завершился или оборвался. Не фатально: решение о
// переподключении принимает внешняя политика.
var ErrStreamClosed = errors.New("stream: closed")

// AuthError — провайдер отверг учётные данные. Фатально для сессии.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("stream: authentication failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("stream: authentication failed: status %d: %s", e.StatusCode, e.Body)
}

// DisconnectError — провайдер прислал уведомление disconnect. Фатально для сессии.
type DisconnectError struct {
	Signal model.Disconnect
}

func (e *DisconnectError) Error() string {
	return "stream: disconnected by provider: " + e.Signal.String()
}

// IsFatal сообщает, завершает ли ошибка сессию без права на переподключение.
func IsFatal(err error) bool {
	var authErr *AuthError
	var discErr *DisconnectError
	return errors.As(err, &authErr) || errors.As(err, &discErr) || errors.Is(err, frame.ErrBufferOverflow)
}
