package model

import (
	"sort"
	"time"
)

// SRIDWGS84 — идентификатор пространственной системы координат WGS84.
const SRIDWGS84 = 4326

// RawMessage — сообщение стрима в исходном виде, как его декодировал JSON.
// Числа хранятся как json.Number, чтобы 64-битные id не теряли точность.
type RawMessage map[string]any

// Point — географическая точка с явно указанным SRID.
type Point struct {
	Lon  float64
	Lat  float64
	SRID int
}

// NewPoint создаёт точку в WGS84.
func NewPoint(lon, lat float64) Point {
	return Point{Lon: lon, Lat: lat, SRID: SRIDWGS84}
}

// Blob — плоский набор строковых пар для хранения вложенных объектов (hstore).
type Blob map[string]string

// Pairs возвращает ключи и значения в отсортированном по ключу порядке.
func (b Blob) Pairs() (keys, values []string) {
	keys = make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values = make([]string, len(keys))
	for i, k := range keys {
		values[i] = b[k]
	}
	return keys, values
}

// Record — нормализованная запись статуса, готовая к вставке в таблицу.
type Record struct {
	ID                   int64
	IDStr                string
	Contributors         *string
	Coordinates          Point
	CreatedAt            time.Time
	Entities             Blob
	FavoriteCount        int
	FilterLevel          string
	Lang                 string
	InReplyToScreenName  *string
	InReplyToStatusID    *int64
	InReplyToStatusIDStr *string
	InReplyToUserID      *int64
	InReplyToUserIDStr   *string
	Place                Blob
	RetweetCount         int
	Source               string
	User                 Blob
	Text                 string
	UserScreenName       string
}
