// Package errors provides structured, actionable error messages for Strato.
//
// Every error carries a stable code (e.g. "E201") that maps to a short
// message, a detailed explanation, and a documentation URL. Call sites
// enrich the template with context:
//
//	err := errors.New("E201").
//	    WithDetail("No module named \"sitemap\" is registered").
//	    WithSuggestion("Register the module with Registry.Register before adding it to Options.Modules")
//
//	fmt.Println(err.Format())
//
// # Error Categories
//
// Errors are organized into categories:
//   - config: bad or missing configuration (Options, strato.json)
//   - path: alias and filesystem resolution failures
//   - module: module registry and setup failures
//   - lifecycle: startup/shutdown sequencing failures
//   - server: listener and HTTP serving failures
//   - cli: command-line usage errors
package errors
