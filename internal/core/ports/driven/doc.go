// Package driven defines the interfaces the core depends on: durable
// storage, token encryption, and the external Google OAuth and Tasks
// capabilities. Adapters implement these; the core never imports adapters.
package driven
