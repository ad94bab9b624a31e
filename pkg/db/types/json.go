package dbtypes

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON stores an arbitrary JSON document in a jsonb (postgres) or text
// (sqlite) column. The raw bytes are kept verbatim so client payloads
// round-trip without re-encoding.
type JSON json.RawMessage

// NewJSON marshals v into a JSON column value.
func NewJSON(v any) (JSON, error) {
	if v == nil {
		return JSON("null"), nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return JSON(raw), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("JSON: marshal: %w", err)
	}
	return JSON(b), nil
}

func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	case string:
		*j = JSON(v)
		return nil
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
}

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("JSON: invalid document")
	}
	return string(j), nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[:0], data...)
	return nil
}

// IsNull reports whether the document is absent or the literal null.
func (j JSON) IsNull() bool {
	return len(j) == 0 || bytes.Equal(bytes.TrimSpace(j), []byte("null"))
}

// Decode unmarshals the document into dest.
func (j JSON) Decode(dest any) error {
	if j.IsNull() {
		return nil
	}
	return json.Unmarshal(j, dest)
}

// GormDBDataType maps the column to jsonb on postgres and text elsewhere, so
// sqlite keeps the document as a string instead of coercing numbers.
func (JSON) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
