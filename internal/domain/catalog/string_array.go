package catalog

import (
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// StringArray maps a Go string slice onto a Postgres text[] column.
type StringArray []string

var arrayTypes = pgtype.NewMap()

func (StringArray) GormDataType() string { return "text[]" }

func (a *StringArray) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}
	var out []string
	if err := arrayTypes.SQLScanner(&out).Scan(src); err != nil {
		return fmt.Errorf("scan text[]: %w", err)
	}
	*a = out
	return nil
}

// Value encodes the array as a Postgres text-format literal ({a,"b c"}).
// A nil array is stored as an empty array so tag filters never see NULL.
func (a StringArray) Value() (driver.Value, error) {
	vals := []string(a)
	if vals == nil {
		vals = []string{}
	}
	buf, err := arrayTypes.Encode(pgtype.TextArrayOID, pgtype.TextFormatCode, vals, nil)
	if err != nil {
		return nil, fmt.Errorf("encode text[]: %w", err)
	}
	return string(buf), nil
}
