package model

import "fmt"

// ControlSignal — служебное сообщение стрима. Никогда не сохраняется, только логируется.
type ControlSignal interface {
	Kind() string
}

// RateLimit сообщает, сколько статусов провайдер не доставил из-за лимитов.
type RateLimit struct {
	Track int64
}

// Warning — предупреждение провайдера (например, отставание клиента).
type Warning struct {
	Code        string
	Message     string
	PercentFull int
}

// Disconnect — уведомление о разрыве соединения со стороны провайдера.
type Disconnect struct {
	Code       int
	StreamName string
	Reason     string
}

func (RateLimit) Kind() string  { return "limit" }
func (Warning) Kind() string    { return "warning" }
func (Disconnect) Kind() string { return "disconnect" }

func (d Disconnect) String() string {
	return fmt.Sprintf("code=%d stream=%q reason=%q", d.Code, d.StreamName, d.Reason)
}
