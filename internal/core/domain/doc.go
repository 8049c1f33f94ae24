// Package domain contains the core business entities for gtasks: accounts,
// encrypted token bundles, the connection-status state machine, and the
// configuration aggregate. Domain types have no dependencies on adapters
// or external services.
package domain
