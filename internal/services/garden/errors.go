package garden

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrDeviceHasSensors = errors.New("device has attached sensors")
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownCommand   = errors.New("unknown command")
)
