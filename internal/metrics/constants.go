package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Crafting metric names
const (
	MetricNameCraftsTotal            = "crafts_total"
	MetricNameBrewsTotal             = "cauldron_brews_total"
	MetricNameDelayedDeliveriesTotal = "delayed_craft_deliveries_total"
	MetricNameRecipesImportedTotal   = "recipes_imported_total"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Crafting metric help text
const (
	HelpTextCraftsTotal            = "Total number of crafting transactions by result"
	HelpTextBrewsTotal             = "Total number of cauldron brews by outcome"
	HelpTextDelayedDeliveriesTotal = "Total number of delayed craft entries delivered"
	HelpTextRecipesImportedTotal   = "Total number of recipes imported"
)

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelResult  = "result"
	LabelOutcome = "outcome"
)

// Craft result label values. Failures map from the crafting error taxonomy.
const (
	ResultSuccess              = "success"
	ResultToolMissing          = "tool_missing"
	ResultInsufficientResource = "insufficient_resource"
	ResultFailedNotConsumed    = "failed_not_consumed"
	ResultFailedConsumed       = "failed_consumed"
	ResultError                = "error"
)

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
