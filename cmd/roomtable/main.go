package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrygo/roomtable/internal/profile"
	"github.com/hrygo/roomtable/plugin/timetable"
	"github.com/hrygo/roomtable/store"
)

// version is set at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "roomtable",
	Short: "Builds and serves per-room timetables from a course export",
	Long: `roomtable reads a course timetable export ({"class": [...]}) and
regroups its sessions by classroom. The result is written as a JSON file
and can be served over a small read-only HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 3000, "port of server")
	flags.String("data", ".", "data directory relative paths are resolved against")
	flags.String("input", "public/data/input.json", "course export to transform")
	flags.String("output", "output.json", "room map file to write and serve")
	flags.String("public", "public", "directory of static files served at /")
	flags.String("period-table", "zero", `period numbering: "zero", "one" or "index=HH:MM,..."`)
	flags.String("period-policy", string(timetable.PolicyDedupe), `period list handling: "dedupe" or "preserve"`)
	flags.String("subject-key", timetable.DefaultFieldKeys.Subject, "record key of the subject name")
	flags.String("instructor-key", timetable.DefaultFieldKeys.Instructor, "record key of the instructor name")
	flags.String("schedule-key", timetable.DefaultFieldKeys.Schedule, "record key of the schedule field")
	flags.StringSlice("cors-origins", nil, "origins allowed to call the API (default http://localhost:5173)")
	flags.Float64("rate-limit", 0, "requests per second per client, 0 disables")
	flags.Int("rate-burst", 20, "burst allowed on top of rate-limit")
	flags.Bool("rebuild-on-reload", false, "rebuild from input instead of re-reading output on reload")

	flags.VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})

	viper.SetEnvPrefix("roomtable")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(transformCmd, serveCmd, roomsCmd)
}

// loadProfile reads the profile from flags, ROOMTABLE_* variables and .env.
func loadProfile() (*profile.Profile, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	p := &profile.Profile{
		Mode:            viper.GetString("mode"),
		Addr:            viper.GetString("addr"),
		Port:            viper.GetInt("port"),
		Data:            viper.GetString("data"),
		Input:           viper.GetString("input"),
		Output:          viper.GetString("output"),
		Public:          viper.GetString("public"),
		Version:         version,
		PeriodTable:     viper.GetString("period-table"),
		PeriodPolicy:    viper.GetString("period-policy"),
		SubjectKey:      viper.GetString("subject-key"),
		InstructorKey:   viper.GetString("instructor-key"),
		ScheduleKey:     viper.GetString("schedule-key"),
		CORSOrigins:     viper.GetStringSlice("cors-origins"),
		RateLimit:       viper.GetFloat64("rate-limit"),
		RateBurst:       viper.GetInt("rate-burst"),
		RebuildOnReload: viper.GetBool("rebuild-on-reload"),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	setupLogger(p)
	return p, nil
}

func setupLogger(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if p.Mode == "prod" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newStore builds the store and transformer described by the profile.
func newStore(p *profile.Profile) (*store.Store, error) {
	transformer, err := p.NewTransformer(slog.Default())
	if err != nil {
		return nil, err
	}
	return store.New(p, transformer), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
