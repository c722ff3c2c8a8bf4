// Package workshop holds the shop's domain records: work orders with their
// status flow, and the ledger. It decodes and encodes the database document
// that the storage package persists as opaque text.
package workshop
