package ecat

import "errors"

var (
	ErrIllegalArgument = errors.New("error in function arguments")
	ErrNotActivated    = errors.New("master is not activated")
	ErrAlreadyActive   = errors.New("master is already activated")
	ErrUnknownSlave    = errors.New("no slave matches identity")
	ErrReleased        = errors.New("master has been released")
)
