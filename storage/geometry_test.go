package storage

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

func TestPointCodecRoundTrip(t *testing.T) {
	for _, p := range []model.Point{
		model.NewPoint(-0.4275, 51.3072),
		model.NewPoint(-122.5950, 37.865),
		model.NewPoint(180, -90),
	} {
		s, err := encodePoint(p)
		require.NoError(t, err)

		got, err := decodePoint(s)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestEncodePointIsPostGISHexEWKB(t *testing.T) {
	s, err := encodePoint(model.NewPoint(1, 2))
	require.NoError(t, err)
	// little endian, Point with SRID flag, SRID 4326, x=1, y=2
	assert.Equal(t, "0101000020E6100000000000000000F03F0000000000000040", strings.ToUpper(s))
}

func TestDecodePointRejectsInvalidInput(t *testing.T) {
	line, err := ewkbhex.Encode(
		geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1}).SetSRID(model.SRIDWGS84),
		binary.LittleEndian,
	)
	require.NoError(t, err)

	for _, bad := range []string{"", "not hex", "0101", line} {
		_, err := decodePoint(bad)
		assert.Error(t, err, bad)
	}
}
