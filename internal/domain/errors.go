package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Crafting errors
	ErrMsgToolMissing            = "required tool missing"
	ErrMsgInsufficientResource   = "insufficient resource"
	ErrMsgCraftFailedNotConsumed = "craft failed, components not consumed"
	ErrMsgCraftFailedConsumed    = "craft failed, components consumed"

	// Lookup errors
	ErrMsgItemNotFound   = "item not found"
	ErrMsgActorNotFound  = "actor not found"
	ErrMsgBookNotFound   = "recipe book not found"
	ErrMsgRecipeNotFound = "recipe not found"

	// Hook errors
	ErrMsgValidationScript = "validation script error"

	// Import/export errors
	ErrMsgInvalidImportData = "invalid import data"

	// Permission errors
	ErrMsgNoPermission = "no permission"

	// Persistence errors
	ErrMsgVersionConflict = "version conflict"
	ErrMsgTxClosed        = "tx is closed"

	// Cauldron errors
	ErrMsgNotEnoughIngredients = "not enough ingredients in the cauldron"

	// Input errors
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Crafting errors
	ErrToolMissing            = errors.New(ErrMsgToolMissing)
	ErrInsufficientResource   = errors.New(ErrMsgInsufficientResource)
	ErrCraftFailedNotConsumed = errors.New(ErrMsgCraftFailedNotConsumed)
	ErrCraftFailedConsumed    = errors.New(ErrMsgCraftFailedConsumed)

	// Lookup errors
	ErrItemNotFound   = errors.New(ErrMsgItemNotFound)
	ErrActorNotFound  = errors.New(ErrMsgActorNotFound)
	ErrBookNotFound   = errors.New(ErrMsgBookNotFound)
	ErrRecipeNotFound = errors.New(ErrMsgRecipeNotFound)

	// Hook errors
	ErrValidationScript = errors.New(ErrMsgValidationScript)

	// Import/export errors
	ErrInvalidImportData = errors.New(ErrMsgInvalidImportData)

	// Permission errors
	ErrNoPermission = errors.New(ErrMsgNoPermission)

	// Persistence errors
	ErrVersionConflict = errors.New(ErrMsgVersionConflict)

	// Cauldron errors
	ErrNotEnoughIngredients = errors.New(ErrMsgNotEnoughIngredients)

	// Input errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
