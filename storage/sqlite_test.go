package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BreadYang/scrape-social-media-in-area/metrics"
	"github.com/BreadYang/scrape-social-media-in-area/model"
	"github.com/BreadYang/scrape-social-media-in-area/normalize"
)

func openMemory(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:", DefaultTable)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteRoundTrip(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	contributors := "[1,2]"
	statusID := int64(425815215426715000)
	rec := sampleRecord(425815215426715648)
	rec.IDStr = "425815215426715648"
	rec.Contributors = &contributors
	rec.InReplyToStatusID = &statusID
	rec.FavoriteCount = 3
	rec.RetweetCount = 1
	rec.Source = "web"
	rec.FilterLevel = "medium"
	rec.Place = model.Blob{"full_name": "San Francisco, CA"}

	require.NoError(t, store.Insert(ctx, DefaultTable, rec))

	got, err := store.Get(ctx, DefaultTable, rec.ID)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.IDStr, got.IDStr)
	assert.Equal(t, rec.Text, got.Text)
	assert.Equal(t, rec.UserScreenName, got.UserScreenName)
	assert.Equal(t, rec.Coordinates, got.Coordinates)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, rec.FavoriteCount, got.FavoriteCount)
	assert.Equal(t, rec.RetweetCount, got.RetweetCount)
	assert.Equal(t, rec.Source, got.Source)
	assert.Equal(t, rec.FilterLevel, got.FilterLevel)
	assert.Equal(t, rec.Lang, got.Lang)
	assert.Equal(t, rec.Contributors, got.Contributors)
	assert.Equal(t, rec.InReplyToScreenName, got.InReplyToScreenName)
	assert.Equal(t, rec.InReplyToStatusID, got.InReplyToStatusID)
	assert.Nil(t, got.InReplyToUserID)
	assert.Nil(t, got.InReplyToStatusIDStr)
	assert.Equal(t, rec.User, got.User)
	assert.Equal(t, rec.Place, got.Place)
	assert.Equal(t, rec.Entities, got.Entities)
}

func TestSQLiteDuplicateID(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, DefaultTable, sampleRecord(1)))

	second := sampleRecord(1)
	second.Text = "other text"
	err := store.Insert(ctx, DefaultTable, second)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))

	got, err := store.Get(ctx, DefaultTable, 1)
	require.NoError(t, err)
	assert.Equal(t, "fog again", got.Text, "first record stays committed")
}

func TestSinkFailureDoesNotBlockNextRecord(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	m := metrics.New()
	var logs bytes.Buffer
	sink := NewSink(store, DefaultTable, 0, slog.New(slog.NewTextHandler(&logs, nil)), m)

	require.NoError(t, sink.Save(ctx, sampleRecord(1)))

	err := sink.Save(ctx, sampleRecord(1))
	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, int64(1), perr.ID)
	assert.True(t, IsDuplicate(err))
	assert.Contains(t, logs.String(), "sink: запись отброшена")
	assert.Contains(t, logs.String(), "result=duplicate")

	require.NoError(t, sink.Save(ctx, sampleRecord(2)))

	_, err = store.Get(ctx, DefaultTable, 2)
	assert.NoError(t, err)
}

func TestSQLiteCustomTable(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:", "tweets_sf")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Insert(ctx, "tweets_sf", sampleRecord(5)))
	assert.Error(t, store.Insert(ctx, DefaultTable, sampleRecord(6)), "default table was not created")
}

const sampleStatus = `{
  "id": 425815215426715648,
  "id_str": "425815215426715648",
  "created_at": "Wed Jan 22 23:19:19 +0000 2014",
  "text": "Fog rolling over Twin Peaks",
  "source": "<a href=\"http://twitter.com\">web</a>",
  "lang": "en",
  "filter_level": "medium",
  "favorite_count": 3,
  "retweet_count": 1,
  "contributors": [12, 34],
  "in_reply_to_screen_name": "bob",
  "in_reply_to_status_id": 425815000000000000,
  "in_reply_to_status_id_str": "425815000000000000",
  "in_reply_to_user_id": null,
  "in_reply_to_user_id_str": null,
  "user": {"screen_name": "alice", "id": 7, "verified": false, "location": null},
  "place": {"full_name": "San Francisco, CA", "bounding_box": {"type": "Polygon"}},
  "entities": {"hashtags": [], "urls": [{"url": "http://t.co/x"}]},
  "coordinates": {"type": "Point", "coordinates": [-122.4477, 37.7544]}
}`

func TestNormalizedStatusSurvivesSinkRoundTrip(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(sampleStatus))
	dec.UseNumber()
	var raw model.RawMessage
	require.NoError(t, dec.Decode(&raw))

	point, ok, err := normalize.Coordinates(raw)
	require.NoError(t, err)
	require.True(t, ok)
	rec, err := normalize.Record(raw, point)
	require.NoError(t, err)

	store := openMemory(t)
	ctx := context.Background()
	sink := NewSink(store, DefaultTable, 0, discardLogger(), metrics.New())
	require.NoError(t, sink.Save(ctx, rec))

	got, err := store.Get(ctx, DefaultTable, 425815215426715648)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	assert.Equal(t, "[12,34]", *got.Contributors)
	assert.Equal(t, "false", got.User["verified"])
	assert.Equal(t, "", got.User["location"])
	assert.Equal(t, `{"type":"Polygon"}`, got.Place["bounding_box"])
	assert.Nil(t, got.InReplyToUserID)
}
