package server

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"smartdisc/backend/internal/apperr"
	"smartdisc/backend/internal/ingest"
	measurementdomain "smartdisc/backend/internal/measurement/domain"
)

var validate = validator.New()

// bindValidate binds the JSON body into req and runs struct validation.
// Failures surface as validation errors, before any transaction opens.
func bindValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return apperr.Validation("invalid field %s (%s)", errs[0].Field(), errs[0].Tag())
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// parseTime parses an RFC3339 timestamp field. Empty input yields the zero
// time when the field is optional.
func parseTime(field, value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, apperr.Validation("%s is required", field)
		}
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be an RFC3339 timestamp", field)
	}
	return t, nil
}

type registerRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	Role            string `json:"role" validate:"required,oneof=player trainer"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type discRegisterRequest struct {
	ID              string `json:"id" validate:"required"`
	Name            string `json:"name"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	FirmwareVersion string `json:"firmware_version"`
	CalibrationDate string `json:"calibration_date"`
}

type assignmentCreateRequest struct {
	DiscID   string `json:"disc_id" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
}

type throwCreateRequest struct {
	ID              string   `json:"id"`
	DiscID          string   `json:"disc_id" validate:"required"`
	PlayerID        string   `json:"player_id"`
	Rotation        *float64 `json:"rotation"`
	Height          *float64 `json:"height"`
	MaxAcceleration *float64 `json:"max_acceleration"`
	StartedAt       string   `json:"started_at"`
	EndedAt         string   `json:"ended_at"`
}

func (r *throwCreateRequest) toInput() (ingest.CreateThrowInput, error) {
	startedAt, err := parseTime("started_at", r.StartedAt, false)
	if err != nil {
		return ingest.CreateThrowInput{}, err
	}
	endedAt, err := parseTime("ended_at", r.EndedAt, false)
	if err != nil {
		return ingest.CreateThrowInput{}, err
	}
	return ingest.CreateThrowInput{
		ID:              r.ID,
		DiscID:          r.DiscID,
		PlayerID:        r.PlayerID,
		Rotation:        r.Rotation,
		Height:          r.Height,
		MaxAcceleration: r.MaxAcceleration,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
	}, nil
}

// sampleRequest is one sensor sample. Each axis accepts its canonical name
// or the short firmware alias (accel_x / ax and so on); supplying both
// spellings of the same axis is rejected rather than silently picking one.
type sampleRequest struct {
	ID         string `json:"id"`
	TakenAt    string `json:"taken_at"`
	SequenceNr *int   `json:"sequence_nr"`

	AccelX *float64 `json:"accel_x"`
	AccelY *float64 `json:"accel_y"`
	AccelZ *float64 `json:"accel_z"`
	AX     *float64 `json:"ax"`
	AY     *float64 `json:"ay"`
	AZ     *float64 `json:"az"`

	GyroX *float64 `json:"gyro_x"`
	GyroY *float64 `json:"gyro_y"`
	GyroZ *float64 `json:"gyro_z"`
	GX    *float64 `json:"gx"`
	GY    *float64 `json:"gy"`
	GZ    *float64 `json:"gz"`

	MagX *float64 `json:"mag_x"`
	MagY *float64 `json:"mag_y"`
	MagZ *float64 `json:"mag_z"`
	MX   *float64 `json:"mx"`
	MY   *float64 `json:"my"`
	MZ   *float64 `json:"mz"`

	Temperature *float64 `json:"temperature"`
	Pressure    *float64 `json:"pressure"`
	GPSLat      *float64 `json:"gps_lat"`
	GPSLon      *float64 `json:"gps_lon"`
	GPSAlt      *float64 `json:"gps_alt"`
}

// pickAxis resolves one canonical/alias pair.
func pickAxis(canonical, alias *float64, canonicalName, aliasName string) (*float64, error) {
	if canonical != nil && alias != nil {
		return nil, apperr.Validation("both %s and %s supplied", canonicalName, aliasName)
	}
	if canonical != nil {
		return canonical, nil
	}
	return alias, nil
}

func (r *sampleRequest) toInput(field string) (ingest.SampleInput, error) {
	takenAt, err := parseTime(field+"taken_at", r.TakenAt, true)
	if err != nil {
		return ingest.SampleInput{}, err
	}

	type axis struct {
		dst              **float64
		canonical, short *float64
		cName, aName     string
	}
	in := ingest.SampleInput{
		ID:          r.ID,
		TakenAt:     takenAt,
		SequenceNr:  r.SequenceNr,
		Temperature: r.Temperature,
		Pressure:    r.Pressure,
		GPS: measurementdomain.GPS{
			Lat: r.GPSLat,
			Lon: r.GPSLon,
			Alt: r.GPSAlt,
		},
	}
	axes := []axis{
		{&in.Accelerometer.X, r.AccelX, r.AX, "accel_x", "ax"},
		{&in.Accelerometer.Y, r.AccelY, r.AY, "accel_y", "ay"},
		{&in.Accelerometer.Z, r.AccelZ, r.AZ, "accel_z", "az"},
		{&in.Gyroscope.X, r.GyroX, r.GX, "gyro_x", "gx"},
		{&in.Gyroscope.Y, r.GyroY, r.GY, "gyro_y", "gy"},
		{&in.Gyroscope.Z, r.GyroZ, r.GZ, "gyro_z", "gz"},
		{&in.Magnetometer.X, r.MagX, r.MX, "mag_x", "mx"},
		{&in.Magnetometer.Y, r.MagY, r.MY, "mag_y", "my"},
		{&in.Magnetometer.Z, r.MagZ, r.MZ, "mag_z", "mz"},
	}
	for _, a := range axes {
		v, err := pickAxis(a.canonical, a.short, field+a.cName, field+a.aName)
		if err != nil {
			return ingest.SampleInput{}, err
		}
		*a.dst = v
	}
	return in, nil
}

// toInputs converts a batch, prefixing validation errors with the entry
// index.
func toInputs(reqs []sampleRequest) ([]ingest.SampleInput, error) {
	out := make([]ingest.SampleInput, 0, len(reqs))
	for i := range reqs {
		in, err := reqs[i].toInput(fmt.Sprintf("measurements[%d].", i))
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

type bulkMeasurementsRequest struct {
	ThrowID      string          `json:"throw_id" validate:"required"`
	Measurements []sampleRequest `json:"measurements" validate:"required,min=1"`
}

type singleMeasurementRequest struct {
	ThrowID string `json:"throw_id" validate:"required"`
	sampleRequest
}

type completeThrowRequest struct {
	throwCreateRequest
	Measurements []sampleRequest `json:"measurements" validate:"required,min=1"`
}
