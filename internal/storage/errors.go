package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath is returned when no database path was supplied.
	ErrEmptyPath = errors.New("empty database path")

	// ErrReservedExtension is returned when the database path itself uses
	// the staging or backup extension.
	ErrReservedExtension = errors.New("database path uses a reserved extension")
)

// Stage identifies the step of the save protocol that failed.
type Stage string

const (
	StagePath       Stage = "resolve sibling paths for"
	StageMkdir      Stage = "create directory"
	StageCreate     Stage = "create staging file"
	StageWrite      Stage = "write staging file"
	StageSync       Stage = "sync staging file"
	StageClose      Stage = "close staging file"
	StageRename     Stage = "rename staging file"
	StageReadBackup Stage = "read backup file"
)

// StageError reports the failing stage together with the file involved.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded in err, if err is or wraps a
// *StageError.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
