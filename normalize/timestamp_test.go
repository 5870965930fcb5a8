package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreatedAt(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"Wed Jan 22 23:19:19 +0000 2014", time.Date(2014, 1, 22, 23, 19, 19, 0, time.UTC)},
		{"Sat Feb 29 00:00:00 +0000 2020", time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"Tue Dec 31 23:59:59 +0000 2019", time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC)},
		{"Mon Jun 01 12:00:00 +0200 2015", time.Date(2015, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"Xyz Mar 05 01:02:03 +0000 2016", time.Date(2016, 3, 5, 1, 2, 3, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := ParseCreatedAt(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}
}

func TestParseCreatedAtRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"Wed Jan 22 23:19:19 +0000 14",
		"Wed Jan 22 23:19:19 +0000 20145",
		"Wed Foo 22 23:19:19 +0000 2014",
		"Wed Jan 2x 23:19:19 +0000 2014",
		"Wed Jan 22 23-19-19 +0000 2014",
		"Wed Jan 22 25:19:19 +0000 2014",
		"Wed Feb 30 10:00:00 +0000 2014",
		"Wed Jan 22 12:00:60 +0000 2014",
		"Wed Jan 22 23:19:19 Z0000 2014",
		"Wed,Jan 22 23:19:19 +0000 2014",
		"2014-01-22T23:19:19.000000000Z",
	}

	for _, in := range inputs {
		_, err := ParseCreatedAt(in)
		var tsErr *TimestampFormatError
		assert.True(t, errors.As(err, &tsErr), "input %q: %v", in, err)
	}
}

func TestParseCreatedAtRejectsLeapSecond(t *testing.T) {
	_, err := ParseCreatedAt("Wed Jan 22 12:00:60 +0000 2014")

	var tsErr *TimestampFormatError
	require.True(t, errors.As(err, &tsErr))
	assert.Equal(t, "field out of range", tsErr.Reason)
}
