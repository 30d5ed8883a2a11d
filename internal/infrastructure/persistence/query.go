package persistence

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/shared"
)

// paginate applies ordering and the page window of filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// searchAny adds a case-insensitive substring match over columns
func searchAny(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// jsonArrayContains matches rows whose JSON array column holds value
func jsonArrayContains(query *gorm.DB, column, value string) *gorm.DB {
	encoded, _ := json.Marshal([]string{value})
	switch query.Dialector.Name() {
	case "postgres":
		return query.Where(column+" @> ?::jsonb", string(encoded))
	case "mysql":
		return query.Where("JSON_CONTAINS("+column+", ?)", string(encoded))
	default:
		item, _ := json.Marshal(value)
		return query.Where(column+" LIKE ?", "%"+string(item)+"%")
	}
}

// toString renders a filter value, including named string types
func toString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
