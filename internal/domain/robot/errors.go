package robot

import "errors"

var (
	ErrRobotNotFound   = errors.New("robot not found")
	ErrRobotRetired    = errors.New("robot is retired")
	ErrStatusUnchanged = errors.New("robot already has this status")
)
