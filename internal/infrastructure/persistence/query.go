package persistence

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Allowed sort fields per table
var (
	CategorySortFields = map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}
	ProductSortFields = map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"price":      true,
		"stock":      true,
	}
	OrderSortFields = map[string]bool{
		"id":            true,
		"created_at":    true,
		"updated_at":    true,
		"customer_name": true,
		"total_price":   true,
		"status":        true,
	}
	NotificationSortFields = map[string]bool{
		"id":         true,
		"created_at": true,
	}
)

// listQuery describes how a table is searched and sorted
type listQuery struct {
	searchColumns []string
	sortFields    map[string]bool
	defaultSort   string
	// filterColumns maps Filter.Filters keys to column names
	filterColumns map[string]string
}

// where applies search and equality filters
func (q listQuery) where(db *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" && len(q.searchColumns) > 0 {
		pattern := "%" + strings.ToLower(search) + "%"
		clauses := make([]string, len(q.searchColumns))
		args := make([]interface{}, len(q.searchColumns))
		for i, col := range q.searchColumns {
			clauses[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = pattern
		}
		db = db.Where(strings.Join(clauses, " OR "), args...)
	}

	for key, value := range filter.Filters {
		col, ok := q.filterColumns[key]
		if !ok || value == nil {
			continue
		}
		db = db.Where(col+" = ?", value)
	}
	return db
}

// apply adds filtering, ordering with an id tie-break, and pagination
func (q listQuery) apply(db *gorm.DB, filter shared.Filter) *gorm.DB {
	db = q.where(db, filter)

	sortField := ValidateSortField(filter.OrderBy, q.sortFields, q.defaultSort)
	db = db.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
	if sortField != "id" {
		db = db.Order("id ASC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		db = db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return db
}
