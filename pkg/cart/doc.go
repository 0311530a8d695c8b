// Package cart implements the per-session cart ledger: adding, removing, pricing
// and confirming items against a live catalog.
package cart
