package store

import (
	"encoding/json"
	"io"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/hrygo/roomtable/plugin/timetable"
)

// ErrInvalidExport is returned when the course export does not have the
// {"class": [ {...}, ... ]} shape.
var ErrInvalidExport = errors.New("invalid course export")

type courseExport struct {
	Class json.RawMessage `json:"class"`
}

// LoadCourses decodes a course export. Records keep their verbatim JSON;
// the subject, instructor and schedule fields are read through keys and
// default to "" when absent or not strings.
func LoadCourses(r io.Reader, keys timetable.FieldKeys) ([]*timetable.Course, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read course export")
	}

	var export courseExport
	if err := sonic.ConfigStd.Unmarshal(data, &export); err != nil {
		return nil, errors.Wrapf(ErrInvalidExport, "top level is not an object: %v", err)
	}
	if len(export.Class) == 0 || string(export.Class) == "null" {
		return nil, errors.Wrap(ErrInvalidExport, "missing class array")
	}

	var records []json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(export.Class, &records); err != nil {
		return nil, errors.Wrapf(ErrInvalidExport, "class is not an array: %v", err)
	}

	courses := make([]*timetable.Course, 0, len(records))
	for i, record := range records {
		var fields map[string]json.RawMessage
		if err := sonic.ConfigStd.Unmarshal(record, &fields); err != nil || fields == nil {
			return nil, errors.Wrapf(ErrInvalidExport, "class[%d] is not an object", i)
		}
		courses = append(courses, &timetable.Course{
			SubjectName:    stringField(fields, keys.Subject),
			InstructorName: stringField(fields, keys.Instructor),
			ScheduleField:  stringField(fields, keys.Schedule),
			Raw:            append(json.RawMessage(nil), record...),
		})
	}
	return courses, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := sonic.ConfigStd.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// WriteRoomMap writes rooms as indented JSON.
func WriteRoomMap(w io.Writer, rooms timetable.RoomMap) error {
	if rooms == nil {
		rooms = timetable.RoomMap{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(rooms, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode room map")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, "failed to write room map")
	}
	return nil
}

// ReadRoomMap decodes a room map written by WriteRoomMap.
func ReadRoomMap(r io.Reader) (timetable.RoomMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read room map")
	}
	var rooms timetable.RoomMap
	if err := sonic.ConfigStd.Unmarshal(data, &rooms); err != nil {
		return nil, errors.Wrap(err, "failed to decode room map")
	}
	if rooms == nil {
		rooms = timetable.RoomMap{}
	}
	return rooms, nil
}
