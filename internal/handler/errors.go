package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgMissingPathParam  = "Missing %s path parameter"

	// Registry operation error messages
	ErrMsgCreateBookFailed      = "Failed to create recipe book"
	ErrMsgListBooksFailed       = "Failed to list recipe books"
	ErrMsgUpdateBookFailed      = "Failed to update recipe book"
	ErrMsgDeleteBookFailed      = "Failed to delete recipe book"
	ErrMsgCreateRecipeFailed    = "Failed to create recipe"
	ErrMsgUpdateRecipeFailed    = "Failed to update recipe"
	ErrMsgDeleteRecipeFailed    = "Failed to delete recipe"
	ErrMsgDuplicateRecipeFailed = "Failed to duplicate recipe"
	ErrMsgExportFailed          = "Failed to export"
	ErrMsgImportFailed          = "Failed to import"
	ErrMsgLookupFailed          = "Failed to look up recipes"

	// Crafting error messages
	ErrMsgAvailabilityFailed = "Failed to compute availability"
	ErrMsgCraftFailed        = "Failed to craft"
	ErrMsgBrewFailed         = "Failed to brew"

	// Admin error messages
	ErrMsgWorldTimeFailed = "Failed to read world time"
	ErrMsgSweepFailed     = "Failed to process delayed crafts"
	ErrMsgConfirmFailed   = "Failed to confirm discovery"
	ErrMsgInvalidSlotKind = "Invalid slot kind '%s'. Valid options: ingredient, product"
)

// Success messages for API responses
// These are user-facing success messages returned in JSON responses
const (
	MsgBookDeletedSuccess   = "Recipe book deleted successfully"
	MsgBookUpdatedSuccess   = "Recipe book updated successfully"
	MsgRecipeUpdatedSuccess = "Recipe updated successfully"
	MsgRecipeDeletedSuccess = "Recipe deleted successfully"
	MsgComponentRemoved     = "Component removed successfully"
	MsgQuantityUpdated      = "Component quantity updated successfully"
	MsgWorldTimeAdvanced    = "World time advanced successfully"
	MsgDiscoveryConfirmed   = "Recipe discovery confirmed"
)
