package catalog

import (
	"fmt"
	"unicode/utf8"

	"github.com/storefront/backend/internal/domain/shared"
)

// Field limits
const (
	MaxCategoryNameLength = 100
	MaxProductNameLength  = 200
	MaxDescriptionLength  = 2000
	MaxProductImages      = 10
)

func validateName(entity, name string, maxLen int) error {
	if name == "" {
		return shared.NewDomainError(shared.CodeValidation, entity+" name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxLen {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("%s name cannot exceed %d characters", entity, maxLen))
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength))
	}
	return nil
}
