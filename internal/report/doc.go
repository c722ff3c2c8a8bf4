// Package report writes rendered reports to a caller-chosen folder.
//
// Exports are disposable artifacts: they are written in place, without the
// backup and rename discipline of the storage package, and are prefixed with
// a UTF-8 byte order mark so spreadsheet tools detect the encoding.
package report
