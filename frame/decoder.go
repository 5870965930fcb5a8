package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// DefaultMaxBuffer — предел незавершённых данных по умолчанию (1 МиБ).
const DefaultMaxBuffer = 1 << 20

var terminator = []byte("\r\n")

// ErrBufferOverflow возвращается, когда незавершённый фрейм превысил MaxBuffer.
var ErrBufferOverflow = errors.New("frame: buffer overflow")

// ParseError описывает фрейм, содержимое которого не является JSON-объектом.
type ParseError struct {
	Frame []byte
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("frame: parse %d bytes: %v", len(e.Frame), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Frame — результат разбора одного фрейма: либо Message, либо Err.
type Frame struct {
	Message model.RawMessage
	Raw     []byte
	Err     error
}

// Decoder собирает фреймы, разделённые CRLF, из кусков произвольной длины.
// Не потокобезопасен: каждая сессия владеет собственным декодером.
type Decoder struct {
	buf       []byte
	maxBuffer int
}

// NewDecoder создаёт декодер; maxBuffer <= 0 означает DefaultMaxBuffer.
func NewDecoder(maxBuffer int) *Decoder {
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBuffer
	}
	return &Decoder{maxBuffer: maxBuffer}
}

// Feed добавляет кусок в буфер и возвращает все фреймы, завершённые этим куском.
// Ошибка разбора фрейма возвращается внутри Frame; ошибка самого Feed фатальна для сессии.
func (d *Decoder) Feed(chunk []byte) ([]Frame, error) {
	d.buf = append(d.buf, chunk...)

	var frames []Frame
	for {
		i := bytes.Index(d.buf, terminator)
		if i < 0 {
			break
		}
		segment := d.buf[:i]
		d.buf = d.buf[i+len(terminator):]

		if len(bytes.TrimSpace(segment)) == 0 {
			continue // keep-alive
		}
		frames = append(frames, decode(segment))
	}

	if len(d.buf) > d.maxBuffer {
		size := len(d.buf)
		d.Reset()
		return frames, fmt.Errorf("%w: %d unterminated bytes exceed limit of %d", ErrBufferOverflow, size, d.maxBuffer)
	}

	switch {
	case len(d.buf) == 0:
		d.buf = nil
	case len(frames) > 0:
		d.buf = append([]byte(nil), d.buf...)
	}
	return frames, nil
}

// Buffered возвращает число байт, ожидающих терминатора.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Reset сбрасывает накопленный буфер.
func (d *Decoder) Reset() {
	d.buf = nil
}

func decode(segment []byte) Frame {
	raw := append([]byte(nil), segment...)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var msg model.RawMessage
	if err := dec.Decode(&msg); err != nil {
		return Frame{Raw: raw, Err: &ParseError{Frame: raw, Err: err}}
	}
	if msg == nil {
		return Frame{Raw: raw, Err: &ParseError{Frame: raw, Err: errors.New("frame is not a JSON object")}}
	}
	if dec.More() {
		return Frame{Raw: raw, Err: &ParseError{Frame: raw, Err: errors.New("trailing data after JSON object")}}
	}

	return Frame{Message: msg, Raw: raw}
}
