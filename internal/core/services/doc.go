// Package services implements the driving ports: the credential lifecycle
// manager, account management with default resolution, and cross-account
// aggregation.
package services
