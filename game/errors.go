package game

import "errors"

var (
	// ErrUnknownRobot is returned for a robot id that is not part of the episode.
	ErrUnknownRobot = errors.New("unknown robot")
	// ErrNotReset is returned by accessors that need a live episode.
	ErrNotReset = errors.New("environment not reset")
)
