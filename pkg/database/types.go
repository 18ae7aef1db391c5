package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// StringArray stores an ordered list of strings in a single column in a
// way that works across PostgreSQL, MySQL, and SQLite. Values are
// written as a JSON array; reading additionally understands the native
// PostgreSQL array literal for columns migrated from TEXT[].
type StringArray []string

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return a.decode(string(v))
	case string:
		return a.decode(v)
	default:
		return errors.New("StringArray: unsupported scan type")
	}
}

func (a *StringArray) decode(s string) error {
	switch {
	case strings.HasPrefix(s, "["):
		// JSON array (the format Value writes)
		return json.Unmarshal([]byte(s), a)

	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		// PostgreSQL array literal: {item1,item2,"quoted item"}
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "{"), "}")
		if inner == "" {
			*a = []string{}
			return nil
		}
		*a = splitPostgresArray(inner)
		return nil

	default:
		*a = []string{s}
		return nil
	}
}

// splitPostgresArray splits a PostgreSQL array literal body, honouring
// quoting and backslash escapes.
func splitPostgresArray(s string) []string {
	var items []string
	var cur strings.Builder
	inQuotes := false
	escaped := false

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			items = append(items, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}

	// The caller only passes a non-empty body, so there is always a
	// final element even when it is empty (as in {a,""}).
	items = append(items, cur.String())

	return items
}

// Value implements driver.Valuer, writing the list as a JSON array.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (StringArray) GormDataType() string {
	return "text"
}
