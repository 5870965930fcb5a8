package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/BreadYang/scrape-social-media-in-area/frame"
	"github.com/BreadYang/scrape-social-media-in-area/geo"
	"github.com/BreadYang/scrape-social-media-in-area/model"
	"github.com/BreadYang/scrape-social-media-in-area/normalize"
)

// DefaultReadChunk — размер одного чтения из транспорта.
const DefaultReadChunk = 4096

// Причины, по которым фрейм не дошёл до хранилища.
const (
	DropParse         = "parse_error"
	DropNoCoordinates = "no_coordinates"
	DropOutOfBox      = "out_of_box"
	DropNormalize     = "normalize_error"
)

// State — состояние сессии.
type State int32

const (
	Connecting State = iota
	Streaming
	Reconnecting
	Terminated
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Reconnecting:
		return "reconnecting"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Transport открывает долгоживущее соединение со стримом, отфильтрованным по области.
type Transport interface {
	Open(ctx context.Context, box geo.Box) (io.ReadCloser, error)
}

// Handler получает результаты разбора. Вызывается синхронно из цикла чтения.
type Handler interface {
	HandleRecord(ctx context.Context, rec model.Record)
	HandleControl(ctx context.Context, sig model.ControlSignal)
	HandleDrop(ctx context.Context, reason string, err error)
}

// Config задаёт параметры одной сессии.
type Config struct {
	Area      string
	Box       geo.Box
	MaxBuffer int
	ReadChunk int
}

// Session — один жизненный цикл соединения: Connecting -> Streaming -> Reconnecting | Terminated.
// Сессия владеет собственным декодером; параллельный Run одной сессии не поддерживается.
type Session struct {
	id        string
	cfg       Config
	transport Transport
	handler   Handler
	logger    *slog.Logger
	state     atomic.Int32
}

// NewSession собирает сессию. Валидность области проверяется здесь, а не при подключении.
func NewSession(cfg Config, transport Transport, handler Handler, logger *slog.Logger) (*Session, error) {
	if err := cfg.Box.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReadChunk <= 0 {
		cfg.ReadChunk = DefaultReadChunk
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	return &Session{
		id:        id,
		cfg:       cfg,
		transport: transport,
		handler:   handler,
		logger:    logger.With("component", "stream", "session_id", id, "area", cfg.Area),
	}, nil
}

// ID возвращает идентификатор сессии для корреляции логов.
func (s *Session) ID() string { return s.id }

// State возвращает текущее состояние.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	if prev := State(s.state.Swap(int32(st))); prev != st {
		s.logger.Debug("stream: смена состояния", "from", prev, "to", st)
	}
}

// Run подключается и обрабатывает фреймы, пока стрим не закончится, не придёт фатальный
// сигнал или не будет отменён контекст. Ошибки отдельных записей наружу не выходят.
func (s *Session) Run(ctx context.Context) error {
	s.setState(Connecting)

	body, err := s.transport.Open(ctx, s.cfg.Box)
	if err != nil {
		if ctx.Err() != nil {
			s.setState(Terminated)
			return ctx.Err()
		}
		var authErr *AuthError
		if errors.As(err, &authErr) {
			s.setState(Terminated)
			return err
		}
		s.setState(Reconnecting)
		return fmt.Errorf("%w: open: %w", ErrStreamClosed, err)
	}
	defer body.Close()
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer stop()

	s.setState(Streaming)
	s.logger.Info("stream: подключено", "locations", s.cfg.Box.String())

	dec := frame.NewDecoder(s.cfg.MaxBuffer)
	buf := make([]byte, s.cfg.ReadChunk)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			frames, feedErr := dec.Feed(buf[:n])
			for _, f := range frames {
				if err := s.dispatch(ctx, f); err != nil {
					s.setState(Terminated)
					return err
				}
			}
			if feedErr != nil {
				s.setState(Terminated)
				s.logger.Error("stream: переполнение буфера", "error", feedErr)
				return feedErr
			}
		}

		if readErr != nil {
			if ctx.Err() != nil {
				s.setState(Terminated)
				return ctx.Err()
			}
			s.setState(Reconnecting)
			if errors.Is(readErr, io.EOF) {
				return fmt.Errorf("%w: end of stream (%d bytes unterminated)", ErrStreamClosed, dec.Buffered())
			}
			return fmt.Errorf("%w: read: %w", ErrStreamClosed, readErr)
		}
	}
}

// dispatch классифицирует фрейм. Ненулевая ошибка означает фатальное завершение сессии.
func (s *Session) dispatch(ctx context.Context, f frame.Frame) error {
	if f.Err != nil {
		s.logger.Warn("stream: фрейм отброшен", "bytes", len(f.Raw), "error", f.Err)
		s.logger.Debug("stream: содержимое отброшенного фрейма", "raw", string(f.Raw))
		s.handler.HandleDrop(ctx, DropParse, f.Err)
		return nil
	}
	msg := f.Message

	if sig, ok := classify(msg); ok {
		s.handler.HandleControl(ctx, sig)
		switch sig := sig.(type) {
		case model.RateLimit:
			s.logger.Info("stream: из-за rate limit пропущены статусы", "missed", sig.Track)
		case model.Disconnect:
			s.logger.Error("stream: провайдер разорвал соединение", "code", sig.Code, "reason", sig.Reason)
			return &DisconnectError{Signal: sig}
		case model.Warning:
			s.logger.Warn("stream: предупреждение провайдера", "code", sig.Code, "message", sig.Message, "percent_full", sig.PercentFull)
		}
		return nil
	}

	point, ok, err := normalize.Coordinates(msg)
	if err != nil {
		s.recordFailure(ctx, msg, f.Raw, err)
		return nil
	}
	if !ok {
		// только bounding box места, без точки
		s.handler.HandleDrop(ctx, DropNoCoordinates, nil)
		return nil
	}

	if !s.cfg.Box.Contains(point.Lon, point.Lat) {
		s.logger.Debug("stream: точка вне области", "id", msg["id"], "lon", point.Lon, "lat", point.Lat)
		s.handler.HandleDrop(ctx, DropOutOfBox, nil)
		return nil
	}

	rec, err := normalize.Record(msg, point)
	if err != nil {
		s.recordFailure(ctx, msg, f.Raw, err)
		return nil
	}

	s.logger.Debug("stream: принят статус", "id", rec.ID, "text", rec.Text)
	s.handler.HandleRecord(ctx, rec)
	return nil
}

func (s *Session) recordFailure(ctx context.Context, msg model.RawMessage, raw []byte, err error) {
	id := normalize.Text(msg["id_str"])
	if id == "" {
		id = normalize.Text(msg["id"])
	}
	s.logger.Warn("stream: запись не нормализована", "id", id, "error", err)
	s.logger.Debug("stream: исходный фрейм", "id", id, "raw", string(raw))
	s.handler.HandleDrop(ctx, DropNormalize, err)
}

// classify распознаёт служебные сообщения в порядке limit, disconnect, warning.
func classify(msg model.RawMessage) (model.ControlSignal, bool) {
	if obj, ok := msg["limit"].(map[string]any); ok {
		return model.RateLimit{Track: intField(obj, "track")}, true
	}
	if obj, ok := msg["disconnect"].(map[string]any); ok {
		return model.Disconnect{
			Code:       int(intField(obj, "code")),
			StreamName: normalize.Text(obj["stream_name"]),
			Reason:     normalize.Text(obj["reason"]),
		}, true
	}
	if obj, ok := msg["warning"].(map[string]any); ok {
		return model.Warning{
			Code:        normalize.Text(obj["code"]),
			Message:     normalize.Text(obj["message"]),
			PercentFull: int(intField(obj, "percent_full")),
		}, true
	}
	return nil, false
}

func intField(obj map[string]any, key string) int64 {
	switch v := obj[key].(type) {
	case json.Number:
		n, err := v.Int64()
		if err == nil {
			return n
		}
	case float64:
		return int64(v)
	}
	return 0
}
