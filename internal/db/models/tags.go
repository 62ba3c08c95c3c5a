package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TagMap is a string key/value mapping stored as a JSON column. It backs
// resource tags and the open-ended attribute maps on admins and sessions.
type TagMap map[string]string

// Scan implements sql.Scanner for reading from database
func (t *TagMap) Scan(value any) error {
	if value == nil {
		*t = make(TagMap)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan TagMap: expected []byte or string, got %T", value)
	}
	return json.Unmarshal(bytes, t)
}

// Value implements driver.Valuer for writing to database
func (t TagMap) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	bytes, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

// Clone returns an independent copy of the map.
func (t TagMap) Clone() TagMap {
	if t == nil {
		return nil
	}
	out := make(TagMap, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
