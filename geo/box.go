package geo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownArea возвращается, когда область с таким именем не настроена.
var ErrUnknownArea = errors.New("unknown area")

// Box — прямоугольная область (minLon, minLat, maxLon, maxLat) с включительными границами.
type Box struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// NewBox проверяет порядок границ и возвращает Box.
func NewBox(minLon, minLat, maxLon, maxLat float64) (Box, error) {
	b := Box{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
	if err := b.Validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

// ParseBox разбирает строку вида "minLon,minLat,maxLon,maxLat"; пробелы вокруг чисел допускаются.
func ParseBox(s string) (Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("geo: parse box %q: expected 4 comma-separated values, got %d", s, len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box{}, fmt.Errorf("geo: parse box %q: %w", s, err)
		}
		v[i] = f
	}

	return NewBox(v[0], v[1], v[2], v[3])
}

// Validate проверяет инварианты minLon < maxLon и minLat < maxLat в допустимых пределах.
func (b Box) Validate() error {
	if b.MinLon < -180 || b.MaxLon > 180 || b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("geo: box %s is out of WGS84 range", b)
	}
	if !(b.MinLon < b.MaxLon) {
		return fmt.Errorf("geo: box %s: min longitude must be less than max longitude", b)
	}
	if !(b.MinLat < b.MaxLat) {
		return fmt.Errorf("geo: box %s: min latitude must be less than max latitude", b)
	}
	return nil
}

// Contains сообщает, лежит ли точка внутри области. Все четыре границы включительные.
func (b Box) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}

// String возвращает область в формате параметра locations.
func (b Box) String() string {
	return strings.Join([]string{
		formatCoord(b.MinLon), formatCoord(b.MinLat), formatCoord(b.MaxLon), formatCoord(b.MaxLat),
	}, ",")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Presets — встроенные городские области.
var Presets = map[string]string{
	"pgh":         "-80.2,40.241667,-79.8,40.641667",
	"sf":          "-122.5950,37.565,-122.295,37.865",
	"ny":          "-74.03095193,40.6815699768,-73.9130315074,40.8343765254",
	"houston":     "-95.592778, 29.550556, -95.138056, 29.958333",
	"detroit":     "-83.2458, 42.1314, -82.8458, 42.5314",
	"chicago":     "-87.9847, 41.6369, -87.5847, 42.0369",
	"cleveland":   "-81.9697, 41.1822, -81.4697, 41.5822",
	"seattle":     "-122.5331, 47.4097, -121.9331, 47.8097",
	"miami":       "-80.4241, 25.5877, -80.0641, 26.2877",
	"london":      "-0.4275, 51.3072, 0.2525, 51.7072",
	"minneapolis": "-93.465, 44.7778, -93.065, 45.1778",
	"austin":      "-97.95, 30.05, -97.55, 30.45",
	"sanantonio":  "-98.7, 29.21667, -98.3, 29.61667",
	"dallas":      "-96.996667, 32.575833, -96.596667, 32.975833",
	"whitehouse":  "-77.038, 38.8965, -77.035, 38.8985",
}

// Areas объединяет встроенные области с пользовательскими; пользовательские перекрывают встроенные.
func Areas(custom map[string]string) map[string]string {
	out := make(map[string]string, len(Presets)+len(custom))
	for name, box := range Presets {
		out[name] = box
	}
	for name, box := range custom {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out[name] = box
		}
	}
	return out
}

// Lookup находит область по имени среди встроенных и пользовательских.
func Lookup(name string, custom map[string]string) (Box, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	raw, ok := Areas(custom)[key]
	if !ok {
		return Box{}, fmt.Errorf("geo: %w %q", ErrUnknownArea, name)
	}
	box, err := ParseBox(raw)
	if err != nil {
		return Box{}, fmt.Errorf("geo: area %q: %w", key, err)
	}
	return box, nil
}

// Names возвращает отсортированный список имён областей.
func Names(custom map[string]string) []string {
	areas := Areas(custom)
	names := make([]string, 0, len(areas))
	for name := range areas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
