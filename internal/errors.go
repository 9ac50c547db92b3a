package internal

import "errors"

// Shared error taxonomy. Callers match with errors.Is; ErrIntegrity marks
// state that has become internally inconsistent and is handled by closing
// the offending connection, never by crashing the process.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrNoDrawer       = errors.New("there is no drawing player")
	ErrInvalidWord    = errors.New("word is empty or blank")
	ErrIntegrity      = errors.New("game integrity violation")
	ErrWordGeneration = errors.New("unable to generate a new word to guess")
)
