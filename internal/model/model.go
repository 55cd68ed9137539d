package model

import (
	"github.com/LeonardoBeccarini/ecogarden/internal/model/entities"
	"github.com/LeonardoBeccarini/ecogarden/internal/model/messages"
)

// Aliases exposing the common types to services.

type (
	Plant       = entities.Plant
	Device      = entities.Device
	Sensor      = entities.Sensor
	Assignment  = entities.Assignment
	Role        = entities.Role
	SensorType  = entities.SensorType
	ReadingKind = entities.ReadingKind
	SensorValue = entities.SensorValue

	Reading = messages.Reading
	Update  = messages.Update
	Batch   = messages.Batch
)

const (
	SensorActive  = entities.SensorActive
	SensorOffline = entities.SensorOffline

	DeviceConnected = entities.DeviceConnected
	DeviceOffline   = entities.DeviceOffline
)
