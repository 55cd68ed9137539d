package entities

// Role is the purpose a sensor serves for a given plant.
type Role string

const (
	RolePrimaryMoisture Role = "primary_moisture"
	RoleEnvironmental   Role = "environmental"
	RoleBackupMoisture  Role = "backup_moisture"
	RoleLightMonitoring Role = "light_monitoring"
)

var roleNames = map[Role]string{
	RolePrimaryMoisture: "Primary Moisture",
	RoleEnvironmental:   "Environmental",
	RoleBackupMoisture:  "Backup Moisture",
	RoleLightMonitoring: "Light Monitoring",
}

// Roles lists the known roles in display order.
func Roles() []Role {
	return []Role{RolePrimaryMoisture, RoleEnvironmental, RoleBackupMoisture, RoleLightMonitoring}
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// DisplayName returns the human label, or the raw value for unknown roles.
func (r Role) DisplayName() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return string(r)
}

// Assignment relates a sensor to a plant under a role. The triple is unique.
type Assignment struct {
	PlantID  int64 `json:"plantId"`
	SensorID int64 `json:"sensorId"`
	Role     Role  `json:"role"`
}

// AssignedSensor is a sensor joined with the role it serves for one plant.
type AssignedSensor struct {
	Sensor
	Role     Role   `json:"role"`
	RoleName string `json:"roleName"`
}
