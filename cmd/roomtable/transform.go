package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hrygo/roomtable/plugin/timetable"
	"github.com/hrygo/roomtable/store"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Transform the course export into a room map file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		s, err := newStore(p)
		if err != nil {
			return err
		}
		snap, err := s.Build(cmd.Context())
		if err != nil {
			return err
		}
		printBuild(p.Output, snap)
		return nil
	},
}

func printBuild(output string, snap *store.Snapshot) {
	fmt.Println(titleStyle.Render("Room map written to " + output))
	stats := snap.Stats
	if stats == nil {
		stats = &timetable.Stats{Rooms: len(snap.Rooms), Sessions: snap.Rooms.SessionCount()}
	}
	row := func(label string, value int) {
		fmt.Printf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-22s", label)), valueStyle.Render(fmt.Sprint(value)))
	}
	row("courses", stats.Courses)
	row("courses without room", stats.CoursesWithoutRoom)
	row("rooms", stats.Rooms)
	row("sessions", stats.Sessions)
	if stats.SkippedClauses > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("  %d malformed clauses skipped", stats.SkippedClauses)))
	}
}
