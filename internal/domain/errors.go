package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a drill session has not been started.
	ErrSessionNotFound = errors.New("drill session not found")
	// ErrSetNotFound indicates the question set could not be loaded.
	ErrSetNotFound = errors.New("question set not found")
	// ErrSessionFinished is returned when an event targets a terminated session.
	ErrSessionFinished = errors.New("drill session already finished")
	// ErrUnknownOption indicates the chosen letter does not map to an option.
	ErrUnknownOption = errors.New("option letter not in question")
)
