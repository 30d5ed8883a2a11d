package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/uniformco/backoffice/internal/domain/catalog"
)

// jsonColumnType picks the native JSON type per dialect
func jsonColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "jsonb"
	case "mysql":
		return "json"
	default:
		return "text"
	}
}

func scanJSON(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}

// StringList is a []string stored as a JSON array
type StringList []string

// Value implements driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	return string(b), err
}

// Scan implements sql.Scanner
func (s *StringList) Scan(value any) error {
	var out []string
	if err := scanJSON(value, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*s = out
	return nil
}

// GormDBDataType implements schema.GormDBDataTypeInterface
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}

// PriceTiers stores catalog bulk pricing as a JSON array
type PriceTiers []catalog.PriceTier

// Value implements driver.Valuer
func (p PriceTiers) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]catalog.PriceTier(p))
	return string(b), err
}

// Scan implements sql.Scanner
func (p *PriceTiers) Scan(value any) error {
	var out []catalog.PriceTier
	if err := scanJSON(value, &out); err != nil {
		return err
	}
	if out == nil {
		out = []catalog.PriceTier{}
	}
	*p = out
	return nil
}

// GormDBDataType implements schema.GormDBDataTypeInterface
func (PriceTiers) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return jsonColumnType(db)
}
