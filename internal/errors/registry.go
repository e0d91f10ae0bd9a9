package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A field in Options could not be normalized into valid settings.",
		DocURL:   "https://strato.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryConfig,
		Message:  "Invalid module entry",
		Detail:   "Options.Modules takes Module values; Options.ModuleNames takes names known to the registry.",
		DocURL:   "https://strato.dev/docs/errors/E002",
	},
	"E010": {
		Category: CategoryConfig,
		Message:  "No strato.json found",
		Detail:   "The project configuration file could not be located.",
		DocURL:   "https://strato.dev/docs/errors/E010",
	},
	"E011": {
		Category: CategoryConfig,
		Message:  "Failed to read strato.json",
		Detail:   "The project configuration file exists but could not be read or parsed.",
		DocURL:   "https://strato.dev/docs/errors/E011",
	},
	"E012": {
		Category: CategoryConfig,
		Message:  "Invalid project configuration",
		Detail:   "A value in strato.json is outside its allowed range.",
		DocURL:   "https://strato.dev/docs/errors/E012",
	},

	// ============================================
	// Path Resolution Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryPath,
		Message:  "Path not found",
		Detail:   "The path did not resolve to an existing file, even after extension probing.",
		DocURL:   "https://strato.dev/docs/errors/E101",
	},

	// ============================================
	// Module Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryModule,
		Message:  "Unknown module",
		Detail:   "The module name is not present in the module registry.",
		DocURL:   "https://strato.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryModule,
		Message:  "Module setup failed",
		Detail:   "A module returned an error during setup. Remaining modules were not loaded.",
		DocURL:   "https://strato.dev/docs/errors/E202",
	},

	// ============================================
	// Lifecycle Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryLifecycle,
		Message:  "Initialization failed",
		Detail:   "The application failed to reach the ready state. The failure is memoized: every later Ready or Listen call observes this same error.",
		DocURL:   "https://strato.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryLifecycle,
		Message:  "Application closed",
		Detail:   "The operation is not available after Close has been called.",
		DocURL:   "https://strato.dev/docs/errors/E302",
	},

	// ============================================
	// Server Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryServer,
		Message:  "Listener bind failed",
		Detail:   "The network listener could not bind to the requested host and port.",
		DocURL:   "https://strato.dev/docs/errors/E401",
	},
}
