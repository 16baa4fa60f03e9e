package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrygo/roomtable/server/service/classroom"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms [prefix]",
	Short: "List rooms in the room map, or print one room's timetable",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		s, err := newStore(p)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if _, err := s.Load(ctx); err != nil {
			return err
		}
		svc := classroom.NewService(s, nil)

		if room, _ := cmd.Flags().GetString("room"); room != "" {
			sessions, err := svc.Room(ctx, room)
			if err != nil {
				return err
			}
			fmt.Println(titleStyle.Render(room))
			if len(sessions) == 0 {
				fmt.Println(labelStyle.Render("  no sessions"))
			}
			for _, session := range sessions {
				periods := make([]string, len(session.Periods))
				for i, period := range session.Periods {
					periods[i] = fmt.Sprint(period)
				}
				fmt.Printf("  %s %s  %s %s\n",
					accentStyle.Render(session.Day),
					valueStyle.Render(session.Time),
					session.Subject,
					labelStyle.Render(fmt.Sprintf("(%s; %s)", session.Professor, strings.Join(periods, ","))))
			}
			return nil
		}

		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}
		rooms, err := svc.Classrooms(ctx, prefix)
		if err != nil {
			return err
		}
		for _, room := range rooms {
			fmt.Printf("%s %s\n", accentStyle.Render(fmt.Sprintf("%-16s", room.Room)), labelStyle.Render(fmt.Sprintf("%d sessions", len(room.Sessions))))
		}
		fmt.Println(titleStyle.Render(fmt.Sprintf("%d rooms", len(rooms))))
		return nil
	},
}

func init() {
	roomsCmd.Flags().String("room", "", "print the timetable of this room")
}
