package normalize

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/BreadYang/scrape-social-media-in-area/model"
)

// Coordinates извлекает пару (lon, lat) из поля coordinates.
// ok == false означает, что координат нет (null или поле отсутствует).
func Coordinates(raw model.RawMessage) (p model.Point, ok bool, err error) {
	v, present := raw["coordinates"]
	if !present || v == nil {
		return model.Point{}, false, nil
	}

	obj, isObj := v.(map[string]any)
	if !isObj {
		return model.Point{}, false, &FieldTypeError{Field: "coordinates", Value: v}
	}
	pair, isArr := obj["coordinates"].([]any)
	if !isArr || len(pair) != 2 {
		return model.Point{}, false, &MissingFieldError{Field: "coordinates.coordinates"}
	}

	lon, err := toFloat("coordinates.coordinates[0]", pair[0])
	if err != nil {
		return model.Point{}, false, err
	}
	lat, err := toFloat("coordinates.coordinates[1]", pair[1])
	if err != nil {
		return model.Point{}, false, err
	}
	return model.NewPoint(lon, lat), true, nil
}

// Record преобразует принятое сообщение в нормализованную запись.
// Точка передаётся уже извлечённой и проверенной гео-фильтром.
func Record(raw model.RawMessage, point model.Point) (model.Record, error) {
	var rec model.Record

	id, err := requiredInt64(raw, "id")
	if err != nil {
		return model.Record{}, err
	}
	rec.ID = id

	text, err := requiredString(raw, "text")
	if err != nil {
		return model.Record{}, err
	}
	rec.Text = text

	userObj, err := object(raw, "user")
	if err != nil {
		return model.Record{}, err
	}
	screenName, err := requiredString(model.RawMessage(userObj), "screen_name")
	var missing *MissingFieldError
	if errors.As(err, &missing) {
		return model.Record{}, &MissingFieldError{Field: "user.screen_name"}
	}
	if err != nil {
		return model.Record{}, err
	}
	rec.UserScreenName = screenName

	createdAt, err := requiredString(raw, "created_at")
	if err != nil {
		return model.Record{}, err
	}
	if rec.CreatedAt, err = ParseCreatedAt(createdAt); err != nil {
		return model.Record{}, err
	}

	if rec.IDStr, err = optionalString(raw, "id_str"); err != nil {
		return model.Record{}, err
	}
	if rec.IDStr == "" {
		rec.IDStr = strconv.FormatInt(rec.ID, 10)
	}

	if rec.FilterLevel, err = optionalString(raw, "filter_level"); err != nil {
		return model.Record{}, err
	}
	if rec.Lang, err = optionalString(raw, "lang"); err != nil {
		return model.Record{}, err
	}
	if rec.Source, err = optionalString(raw, "source"); err != nil {
		return model.Record{}, err
	}
	if rec.FavoriteCount, err = counter(raw, "favorite_count"); err != nil {
		return model.Record{}, err
	}
	if rec.RetweetCount, err = counter(raw, "retweet_count"); err != nil {
		return model.Record{}, err
	}

	if rec.InReplyToScreenName, err = nullableString(raw, "in_reply_to_screen_name"); err != nil {
		return model.Record{}, err
	}
	if rec.InReplyToStatusID, err = nullableInt64(raw, "in_reply_to_status_id"); err != nil {
		return model.Record{}, err
	}
	if rec.InReplyToStatusIDStr, err = nullableString(raw, "in_reply_to_status_id_str"); err != nil {
		return model.Record{}, err
	}
	if rec.InReplyToUserID, err = nullableInt64(raw, "in_reply_to_user_id"); err != nil {
		return model.Record{}, err
	}
	if rec.InReplyToUserIDStr, err = nullableString(raw, "in_reply_to_user_id_str"); err != nil {
		return model.Record{}, err
	}

	if c := raw["contributors"]; c != nil {
		s := Text(c)
		rec.Contributors = &s
	}

	rec.User = Blob(userObj)
	if rec.Place, err = blobField(raw, "place"); err != nil {
		return model.Record{}, err
	}
	if rec.Entities, err = blobField(raw, "entities"); err != nil {
		return model.Record{}, err
	}

	point.SRID = model.SRIDWGS84
	rec.Coordinates = point

	return rec, nil
}

// Blob приводит каждый ключ и значение объекта к тексту. nil даёт пустой Blob.
func Blob(obj map[string]any) model.Blob {
	out := make(model.Blob, len(obj))
	for k, v := range obj {
		out[k] = Text(v)
	}
	return out
}

// Text возвращает текстовое представление значения из JSON.
// Вложенные объекты и массивы кодируются компактным JSON, null становится пустой строкой.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func blobField(raw model.RawMessage, field string) (model.Blob, error) {
	obj, err := object(raw, field)
	if err != nil {
		return nil, err
	}
	return Blob(obj), nil
}

func object(raw model.RawMessage, field string) (map[string]any, error) {
	v := raw[field]
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &FieldTypeError{Field: field, Value: v}
	}
	return obj, nil
}

func requiredString(raw model.RawMessage, field string) (string, error) {
	s, err := optionalString(raw, field)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", &MissingFieldError{Field: field}
	}
	return s, nil
}

func optionalString(raw model.RawMessage, field string) (string, error) {
	v := raw[field]
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldTypeError{Field: field, Value: v}
	}
	return s, nil
}

func nullableString(raw model.RawMessage, field string) (*string, error) {
	if raw[field] == nil {
		return nil, nil
	}
	s, err := optionalString(raw, field)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func requiredInt64(raw model.RawMessage, field string) (int64, error) {
	v := raw[field]
	if v == nil {
		return 0, &MissingFieldError{Field: field}
	}
	return toInt64(field, v)
}

func nullableInt64(raw model.RawMessage, field string) (*int64, error) {
	v := raw[field]
	if v == nil {
		return nil, nil
	}
	n, err := toInt64(field, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func counter(raw model.RawMessage, field string) (int, error) {
	v := raw[field]
	if v == nil {
		return 0, nil
	}
	n, err := toInt64(field, v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func toInt64(field string, v any) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, &FieldTypeError{Field: field, Value: v}
		}
		return n, nil
	case float64:
		if t != float64(int64(t)) {
			return 0, &FieldTypeError{Field: field, Value: v}
		}
		return int64(t), nil
	default:
		return 0, &FieldTypeError{Field: field, Value: v}
	}
}

func toFloat(field string, v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, &FieldTypeError{Field: field, Value: v}
		}
		return f, nil
	case float64:
		return t, nil
	default:
		return 0, &FieldTypeError{Field: field, Value: v}
	}
}
