package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/infrastructure/csvimport"
)

// Catalogue file columns. List columns are pipe separated; bulk_pricing is
// "min-max:price" tiers, e.g. "10-49:18.50|50-:16".
var requiredImportColumns = []string{"code", "name", "base_price"}

// ImportResult summarises a catalogue import
type ImportResult struct {
	Rows    int                  `json:"rows"`
	Created []string             `json:"created"`
	Skipped []string             `json:"skipped"`
	Errors  []csvimport.RowError `json:"errors,omitempty"`
}

// Import creates products from a CSV catalogue. Codes that already exist are
// skipped, so re-running an import is harmless. Bad rows are reported and the
// rest of the file is still imported.
func (s *ProductService) Import(ctx context.Context, actor identity.Principal, r io.Reader) (*ImportResult, error) {
	if err := identity.Authorize(actor, identity.ResourceProducts, identity.ActionCreate, nil); err != nil {
		return nil, err
	}

	parser, err := csvimport.NewParser(r, csvimport.WithWindows1252Fallback())
	if err != nil {
		return nil, shared.NewValidationError("file", "INVALID_FILE", err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewValidationError("file", "INVALID_FILE", err.Error())
	}
	if missing := parser.Missing(requiredImportColumns...); len(missing) > 0 {
		return nil, shared.NewValidationError("file", "MISSING_COLUMNS",
			"Missing required columns: "+strings.Join(missing, ", "))
	}
	rows, err := parser.All()
	if err != nil {
		return nil, shared.NewValidationError("file", "INVALID_FILE", err.Error())
	}

	result := &ImportResult{Rows: len(rows), Created: []string{}, Skipped: []string{}}
	problems := csvimport.NewErrors(200)
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		req, ok := productFromRow(row, problems)
		if !ok {
			continue
		}
		code := strings.ToUpper(req.Code)
		if first, dup := seen[code]; dup {
			problems.Add(csvimport.RowError{
				Line: row.Line, Column: "code", Code: csvimport.CodeDuplicate,
				Message: fmt.Sprintf("already used on line %d", first), Value: req.Code,
			})
			continue
		}
		seen[code] = row.Line

		if _, err := s.Create(ctx, actor, req); err != nil {
			var de *shared.DomainError
			if !errors.As(err, &de) {
				return nil, err
			}
			if de.Code == "PRODUCT_ALREADY_EXISTS" {
				result.Skipped = append(result.Skipped, req.Code)
				continue
			}
			problems.Add(csvimport.RowError{Line: row.Line, Column: de.Field, Code: de.Code, Message: de.Message})
			continue
		}
		result.Created = append(result.Created, req.Code)
	}

	result.Errors = problems.Items()
	s.logger.Info("Product catalogue imported",
		zap.Int("rows", result.Rows),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("errors", problems.Total()),
		zap.String("actor", actor.Username))
	return result, nil
}

func productFromRow(row csvimport.Row, problems *csvimport.Errors) (CreateProductRequest, bool) {
	ok := true
	fail := func(column, code, message string) {
		problems.Add(csvimport.RowError{Line: row.Line, Column: column, Code: code, Message: message, Value: row.Get(column)})
		ok = false
	}

	req := CreateProductRequest{
		Code:                 row.Get("code"),
		Name:                 row.Get("name"),
		Description:          row.Get("description"),
		Category:             strings.ToLower(row.Get("category")),
		UniformType:          strings.ToLower(row.Get("uniform_type")),
		Sizes:                splitList(row.Get("sizes")),
		Colors:               splitList(row.Get("colors")),
		CustomizationOptions: splitList(row.Get("customization_options")),
	}
	for _, col := range requiredImportColumns {
		if row.Get(col) == "" {
			fail(col, csvimport.CodeRequired, "is required")
		}
	}

	if v := row.Get("base_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			fail("base_price", csvimport.CodeInvalidType, "must be a decimal number")
		}
		req.BasePrice = price
	}
	if v := row.Get("special_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			fail("special_price", csvimport.CodeInvalidType, "must be a decimal number")
		}
		req.SpecialPrice = &price
	}
	counts := []struct {
		column string
		dst    *int
	}{{"stock_quantity", &req.StockQuantity}, {"reorder_level", &req.ReorderLevel}}
	for _, c := range counts {
		if v := row.Get(c.column); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				fail(c.column, csvimport.CodeInvalidType, "must be a whole number of zero or more")
			}
			*c.dst = n
		}
	}
	if v := row.Get("bulk_pricing"); v != "" {
		tiers, err := parseTiers(v)
		if err != nil {
			fail("bulk_pricing", csvimport.CodeInvalidType, err.Error())
		}
		req.BulkPricing = tiers
	}
	return req, ok
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseTiers reads "min-max:price" entries; an empty max is open ended
func parseTiers(v string) ([]PriceTierRequest, error) {
	var tiers []PriceTierRequest
	for _, entry := range splitList(v) {
		bounds, price, found := strings.Cut(entry, ":")
		if !found {
			return nil, fmt.Errorf("tier %q must look like min-max:price", entry)
		}
		lo, hi, _ := strings.Cut(bounds, "-")
		minQty, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("tier %q has a bad minimum", entry)
		}
		maxQty := 0
		if hi = strings.TrimSpace(hi); hi != "" {
			if maxQty, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("tier %q has a bad maximum", entry)
			}
		}
		unit, err := decimal.NewFromString(strings.TrimSpace(price))
		if err != nil {
			return nil, fmt.Errorf("tier %q has a bad price", entry)
		}
		tiers = append(tiers, PriceTierRequest{MinQuantity: minQty, MaxQuantity: maxQty, UnitPrice: unit})
	}
	return tiers, nil
}
