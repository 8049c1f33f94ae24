// Package driving defines the service interfaces exposed to the CLI layer.
package driving
