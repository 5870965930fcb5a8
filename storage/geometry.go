package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// encodePoint кодирует точку в hex EWKB: в таком виде PostGIS принимает и отдаёт geometry.
func encodePoint(p model.Point) (string, error) {
	g := geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}).SetSRID(p.SRID)
	s, err := ewkbhex.Encode(g, binary.LittleEndian)
	if err != nil {
		return "", fmt.Errorf("storage: encode point: %w", err)
	}
	return s, nil
}

func decodePoint(s string) (model.Point, error) {
	g, err := ewkbhex.Decode(s)
	if err != nil {
		return model.Point{}, fmt.Errorf("storage: decode point %q: %w", s, err)
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return model.Point{}, fmt.Errorf("storage: decode point: expected Point, got %T", g)
	}
	return model.Point{Lon: pt.X(), Lat: pt.Y(), SRID: pt.SRID()}, nil
}
