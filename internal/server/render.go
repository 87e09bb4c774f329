package server

import (
	"time"

	assignmentdomain "smartdisc/backend/internal/assignment/domain"
	assignmentrepo "smartdisc/backend/internal/assignment/repository"
	auditdomain "smartdisc/backend/internal/audit/domain"
	discdomain "smartdisc/backend/internal/disc/domain"
	identitydomain "smartdisc/backend/internal/identity/domain"
	measurementdomain "smartdisc/backend/internal/measurement/domain"
	throwdomain "smartdisc/backend/internal/throw/domain"
)

// JSON views of the domain entities. Optional numeric fields render as null
// when absent; zero timestamps are omitted.

type throwView struct {
	ID              string    `json:"id"`
	DiscID          string    `json:"disc_id"`
	PlayerID        string    `json:"player_id,omitempty"`
	Rotation        *float64  `json:"rotation"`
	Height          *float64  `json:"height"`
	MaxAcceleration *float64  `json:"max_acceleration"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	EndedAt         time.Time `json:"ended_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
	ModifiedAt      time.Time `json:"modified_at"`
	Version         int       `json:"version"`
}

func viewThrow(t *throwdomain.Throw) throwView {
	return throwView{
		ID:              t.ID,
		DiscID:          t.DiscID,
		PlayerID:        t.PlayerID,
		Rotation:        t.Metrics.Rotation,
		Height:          t.Metrics.Height,
		MaxAcceleration: t.Metrics.MaxAcceleration,
		StartedAt:       t.StartedAt,
		EndedAt:         t.EndedAt,
		CreatedAt:       t.CreatedAt,
		ModifiedAt:      t.ModifiedAt,
		Version:         t.Version,
	}
}

func viewThrows(ts []*throwdomain.Throw) []throwView {
	out := make([]throwView, 0, len(ts))
	for _, t := range ts {
		out = append(out, viewThrow(t))
	}
	return out
}

type measurementView struct {
	ID          string    `json:"id"`
	ThrowID     string    `json:"throw_id"`
	TakenAt     time.Time `json:"taken_at"`
	SequenceNr  int       `json:"sequence_nr"`
	AccelX      *float64  `json:"accel_x"`
	AccelY      *float64  `json:"accel_y"`
	AccelZ      *float64  `json:"accel_z"`
	GyroX       *float64  `json:"gyro_x"`
	GyroY       *float64  `json:"gyro_y"`
	GyroZ       *float64  `json:"gyro_z"`
	MagX        *float64  `json:"mag_x"`
	MagY        *float64  `json:"mag_y"`
	MagZ        *float64  `json:"mag_z"`
	Temperature *float64  `json:"temperature"`
	Pressure    *float64  `json:"pressure"`
	GPSLat      *float64  `json:"gps_lat"`
	GPSLon      *float64  `json:"gps_lon"`
	GPSAlt      *float64  `json:"gps_alt"`
	CreatedAt   time.Time `json:"created_at"`
}

func viewMeasurement(m *measurementdomain.Measurement) measurementView {
	return measurementView{
		ID:          m.ID,
		ThrowID:     m.ThrowID,
		TakenAt:     m.TakenAt,
		SequenceNr:  m.SequenceNr,
		AccelX:      m.Accelerometer.X,
		AccelY:      m.Accelerometer.Y,
		AccelZ:      m.Accelerometer.Z,
		GyroX:       m.Gyroscope.X,
		GyroY:       m.Gyroscope.Y,
		GyroZ:       m.Gyroscope.Z,
		MagX:        m.Magnetometer.X,
		MagY:        m.Magnetometer.Y,
		MagZ:        m.Magnetometer.Z,
		Temperature: m.Temperature,
		Pressure:    m.Pressure,
		GPSLat:      m.GPS.Lat,
		GPSLon:      m.GPS.Lon,
		GPSAlt:      m.GPS.Alt,
		CreatedAt:   m.CreatedAt,
	}
}

func viewMeasurements(ms []*measurementdomain.Measurement) []measurementView {
	out := make([]measurementView, 0, len(ms))
	for _, m := range ms {
		out = append(out, viewMeasurement(m))
	}
	return out
}

type discView struct {
	ID              string    `json:"id"`
	Name            string    `json:"name,omitempty"`
	Model           string    `json:"model,omitempty"`
	SerialNumber    string    `json:"serial_number,omitempty"`
	FirmwareVersion string    `json:"firmware_version,omitempty"`
	CalibrationDate string    `json:"calibration_date,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

func viewDisc(d *discdomain.Disc) discView {
	return discView{
		ID:              d.ID,
		Name:            d.Name,
		Model:           d.Model,
		SerialNumber:    d.SerialNumber,
		FirmwareVersion: d.FirmwareVersion,
		CalibrationDate: d.CalibrationDate,
		Active:          d.Active,
		CreatedAt:       d.CreatedAt,
	}
}

func viewDiscs(ds []*discdomain.Disc) []discView {
	out := make([]discView, 0, len(ds))
	for _, d := range ds {
		out = append(out, viewDisc(d))
	}
	return out
}

type userView struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func viewUser(u *identitydomain.User) userView {
	return userView{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type assignmentView struct {
	ID             int64     `json:"id"`
	DiscID         string    `json:"disc_id"`
	PlayerID       string    `json:"player_id"`
	AssignedAt     time.Time `json:"assigned_at"`
	DiscName       string    `json:"disc_name,omitempty"`
	AssignedByName string    `json:"assigned_by_name,omitempty"`
}

func viewAssignments(as []*assignmentdomain.Assignment) []assignmentView {
	out := make([]assignmentView, 0, len(as))
	for _, a := range as {
		out = append(out, assignmentView{
			ID:             a.ID,
			DiscID:         a.DiscID,
			PlayerID:       a.PlayerID,
			AssignedAt:     a.AssignedAt,
			DiscName:       a.DiscName,
			AssignedByName: a.AssignedByName,
		})
	}
	return out
}

type assignedDiscView struct {
	discView
	AssignedAt string `json:"assigned_at"`
}

func viewAssignedDiscs(ds []*assignmentrepo.AssignedDisc) []assignedDiscView {
	out := make([]assignedDiscView, 0, len(ds))
	for _, d := range ds {
		out = append(out, assignedDiscView{
			discView:   viewDisc(&d.Disc),
			AssignedAt: d.AssignedAt,
		})
	}
	return out
}

type auditRecordView struct {
	ID              int64                 `json:"id"`
	Table           string                `json:"table"`
	RecordID        string                `json:"record_id"`
	Operation       string                `json:"operation"`
	Before          *auditdomain.Snapshot `json:"before"`
	After           *auditdomain.Snapshot `json:"after"`
	UserID          string                `json:"user_id,omitempty"`
	IP              string                `json:"ip,omitempty"`
	UserAgent       string                `json:"user_agent,omitempty"`
	SnapshotVersion int                   `json:"snapshot_version"`
	RecordedAt      time.Time             `json:"recorded_at"`
}

func viewAuditRecords(recs []*auditdomain.Record) []auditRecordView {
	out := make([]auditRecordView, 0, len(recs))
	for _, r := range recs {
		out = append(out, auditRecordView{
			ID:              r.ID,
			Table:           r.Table,
			RecordID:        r.RecordID,
			Operation:       string(r.Operation),
			Before:          r.Before,
			After:           r.After,
			UserID:          r.Actor.UserID,
			IP:              r.Actor.IP,
			UserAgent:       r.Actor.Agent,
			SnapshotVersion: r.SnapshotVersion,
			RecordedAt:      r.RecordedAt,
		})
	}
	return out
}
