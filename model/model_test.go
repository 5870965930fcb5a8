package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlobPairsSortedByKey(t *testing.T) {
	b := Blob{"screen_name": "alice", "id": "42", "lang": "en"}

	keys, values := b.Pairs()

	assert.Equal(t, []string{"id", "lang", "screen_name"}, keys)
	assert.Equal(t, []string{"42", "en", "alice"}, values)
}

func TestBlobPairsEmpty(t *testing.T) {
	keys, values := Blob(nil).Pairs()

	assert.Empty(t, keys)
	assert.Empty(t, values)
	assert.NotNil(t, keys)
}

func TestNewPointUsesWGS84(t *testing.T) {
	p := NewPoint(-122.4, 37.7)
	assert.Equal(t, Point{Lon: -122.4, Lat: 37.7, SRID: 4326}, p)
}

func TestControlSignalKinds(t *testing.T) {
	signals := []ControlSignal{RateLimit{Track: 5}, Warning{Message: "slow"}, Disconnect{Reason: "shutdown"}}
	kinds := make([]string, 0, len(signals))
	for _, s := range signals {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []string{"limit", "warning", "disconnect"}, kinds)
}
