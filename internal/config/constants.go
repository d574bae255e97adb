package config

// DefaultQuantityPath is where most host systems keep stack quantity.
// Some systems nest it (e.g. "quantity.value"); deployments override via
// the QUANTITY_PATH environment variable.
const DefaultQuantityPath = "quantity"

// DefaultCraftSound is the fallback completion cue, relative to the host's
// asset root.
const DefaultCraftSound = "assets/crafting.ogg"
