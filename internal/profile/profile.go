package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hrygo/roomtable/plugin/timetable"
)

// Profile is the configuration shared by the transform and serve commands.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int `validate:"gte=0,lte=65535"`
	// Data is the base directory relative paths are resolved against
	Data string
	// Input is the raw course export ({"class": [...]})
	Input string
	// Output is the derived room map file
	Output string `validate:"required"`
	// Public is the directory of static files served at /
	Public string
	// Version is the current version of server
	Version string

	// PeriodTable is a preset ("zero", "one") or "index=HH:MM,..." pairs
	PeriodTable string
	// PeriodPolicy is "dedupe" or "preserve"
	PeriodPolicy string `validate:"omitempty,oneof=dedupe preserve"`

	// Input record keys
	SubjectKey    string `validate:"required"`
	InstructorKey string `validate:"required"`
	ScheduleKey   string `validate:"required"`

	// CORSOrigins lists the origins allowed by the API
	CORSOrigins []string `validate:"dive,url|eq=*"`
	// RateLimit is requests per second per client; 0 disables limiting
	RateLimit float64 `validate:"gte=0"`
	// RateBurst is the burst allowed on top of RateLimit
	RateBurst int `validate:"gte=0"`
	// RebuildOnReload re-runs the transformation from Input on reload
	RebuildOnReload bool
}

var validate = validator.New()

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// FieldKeys returns the input record keys.
func (p *Profile) FieldKeys() timetable.FieldKeys {
	return timetable.FieldKeys{
		Subject:    p.SubjectKey,
		Instructor: p.InstructorKey,
		Schedule:   p.ScheduleKey,
	}
}

// NewTransformer builds the transformer described by the profile.
func (p *Profile) NewTransformer(logger *slog.Logger) (*timetable.Transformer, error) {
	table, err := timetable.ParsePeriodTable(p.PeriodTable)
	if err != nil {
		return nil, errors.Wrap(err, "invalid period table")
	}
	policy, err := timetable.ParsePolicy(p.PeriodPolicy)
	if err != nil {
		return nil, errors.Wrap(err, "invalid periods policy")
	}
	return timetable.NewTransformer(table, policy, timetable.WithLogger(logger)), nil
}

func checkDataDir(dataDir string) (string, error) {
	if dataDir == "" {
		dataDir = "."
	}
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return "", err
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(absDir, "\\/")
	if dataDir == "" {
		dataDir = string(filepath.Separator)
	}
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func resolve(dataDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.SubjectKey == "" {
		p.SubjectKey = timetable.DefaultFieldKeys.Subject
	}
	if p.InstructorKey == "" {
		p.InstructorKey = timetable.DefaultFieldKeys.Instructor
	}
	if p.ScheduleKey == "" {
		p.ScheduleKey = timetable.DefaultFieldKeys.Schedule
	}

	if err := validate.Struct(p); err != nil {
		return errors.Wrap(err, "invalid profile")
	}
	if _, err := timetable.ParsePeriodTable(p.PeriodTable); err != nil {
		return errors.Wrap(err, "invalid period table")
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	p.Input = resolve(dataDir, p.Input)
	p.Output = resolve(dataDir, p.Output)
	p.Public = resolve(dataDir, p.Public)
	return nil
}
