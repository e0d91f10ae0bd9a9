// Package resolve maps logical Strato paths to filesystem locations.
//
// Paths may use alias prefixes:
//
//	@@ or ~~  relative to the project root directory
//	@ or ~    relative to the source directory
//
// A path that exists under one of the configured module directories is
// resolved there before any alias interpretation. This ordering lets
// installed package names that begin with "@" (scoped packages) win over
// the alias reading of the same string.
package resolve
