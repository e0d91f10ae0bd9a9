// Package dev implements development-mode support for Strato: a WebSocket
// broadcast server that tells connected browsers to reload, and a polling
// file watcher that drives it.
//
// Both are wired up by the built-in "dev" module; applications normally do
// not use this package directly.
package dev
