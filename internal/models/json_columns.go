package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// The types below are stored as JSON text in SQL databases and as native
// arrays in MongoDB.

// StringList is an ordered list of strings.
type StringList []string

// SizeStocks is the ordered size table of a product.
type SizeStocks []SizeStock

// LineItems is the ordered item sequence of a cart.
type LineItems []LineItem

func (StringList) GormDataType() string { return "text" }
func (SizeStocks) GormDataType() string { return "text" }
func (LineItems) GormDataType() string  { return "text" }

func (l StringList) Value() (driver.Value, error) { return marshalColumn(l) }
func (s SizeStocks) Value() (driver.Value, error) { return marshalColumn(s) }
func (l LineItems) Value() (driver.Value, error)  { return marshalColumn(l) }

func (l *StringList) Scan(src interface{}) error { return scanColumn(src, l) }
func (s *SizeStocks) Scan(src interface{}) error { return scanColumn(src, s) }
func (l *LineItems) Scan(src interface{}) error  { return scanColumn(src, l) }

func marshalColumn(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(b), nil
}

func scanColumn(src interface{}, dest interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}
