// Package storage persists the shop database file with crash-safety
// guarantees.
//
// A save copies the current primary file to a ".bak" sibling (best effort),
// writes the new content to a ".tmp" sibling, flushes it to stable storage,
// and renames it over the primary. At every instant the primary holds either
// the complete old content or the complete new content.
//
// Loading never fails: an absent or unreadable primary yields EmptyDocument.
// LoadState additionally reports which of those cases applied.
package storage
