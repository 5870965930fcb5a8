package normalize

import "fmt"

// MissingFieldError — обязательное поле отсутствует или пустое.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("normalize: missing required field %q", e.Field)
}

// TimestampFormatError — created_at не соответствует фиксированному формату.
type TimestampFormatError struct {
	Value  string
	Reason string
}

func (e *TimestampFormatError) Error() string {
	return fmt.Sprintf("normalize: timestamp %q: %s", e.Value, e.Reason)
}

// FieldTypeError — поле присутствует, но имеет неожиданный тип.
type FieldTypeError struct {
	Field string
	Value any
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("normalize: field %q has unexpected type %T", e.Field, e.Value)
}
