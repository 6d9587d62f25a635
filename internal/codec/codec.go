// Package codec encodes a tracker snapshot to the line-oriented text format
// and decodes it back.
//
// Format:
//
//	id,type,name,status,description,epic
//	<one line per task, then epic, then subtask>
//	<blank line>
//	<comma-separated history ids, oldest first; omitted when empty>
//
// Fields are separated by a literal comma with no escaping. A name or
// description containing a comma or newline does not survive a round trip.
package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Header is the first line of every snapshot.
const Header = "id,type,name,status,description,epic"

const (
	fieldID = iota
	fieldType
	fieldName
	fieldStatus
	fieldDescription
	fieldEpic
	fieldCount
)

// Encode renders snap in the snapshot text format.
func Encode(snap types.Snapshot) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')

	for _, t := range snap.Tasks {
		writeRecord(&buf, types.KindTask, t, "")
	}
	for _, e := range snap.Epics {
		writeRecord(&buf, types.KindEpic, e.Task, "")
	}
	for _, st := range snap.Subtasks {
		writeRecord(&buf, types.KindSubtask, st.Task, strconv.Itoa(st.EpicID))
	}

	buf.WriteByte('\n')

	for i, id := range snap.History {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(id))
	}
	return buf.Bytes()
}

func writeRecord(buf *bytes.Buffer, kind types.Kind, t types.Task, epic string) {
	fmt.Fprintf(buf, "%d,%s,%s,%s,%s,%s\n", t.ID, kind, t.Name, t.Status, t.Description, epic)
}

// Decode parses snapshot text. Empty input yields an empty snapshot. The
// first line is the header and is skipped. Any unparseable id, type, or
// status token fails the whole decode; no partial result is returned.
func Decode(data []byte) (types.Snapshot, error) {
	var snap types.Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	readingHistory := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			continue
		}
		if line == "" {
			readingHistory = true
			continue
		}
		if readingHistory {
			ids, err := parseHistory(line)
			if err != nil {
				return types.Snapshot{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			snap.History = ids
			break
		}
		if err := decodeRecord(&snap, line); err != nil {
			return types.Snapshot{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return types.Snapshot{}, fmt.Errorf("scanning snapshot: %w", err)
	}
	return snap, nil
}

func decodeRecord(snap *types.Snapshot, line string) error {
	fields := strings.Split(line, ",")
	// The trailing epic field of task and epic lines may be absent.
	if len(fields) < fieldEpic || len(fields) > fieldCount {
		return fmt.Errorf("%w: want %d fields, got %d", types.ErrMalformedRecord, fieldCount, len(fields))
	}

	id, err := strconv.Atoi(fields[fieldID])
	if err != nil {
		return fmt.Errorf("%w: id %q", types.ErrMalformedRecord, fields[fieldID])
	}
	kind, err := types.ParseKind(fields[fieldType])
	if err != nil {
		return err
	}
	status, err := types.ParseStatus(fields[fieldStatus])
	if err != nil {
		return err
	}
	base := types.Task{
		ID:          id,
		Name:        fields[fieldName],
		Description: fields[fieldDescription],
		Status:      status,
	}

	switch kind {
	case types.KindTask:
		snap.Tasks = append(snap.Tasks, base)
	case types.KindEpic:
		snap.Epics = append(snap.Epics, types.Epic{Task: base, SubtaskIDs: []int{}})
	case types.KindSubtask:
		if len(fields) < fieldCount {
			return fmt.Errorf("%w: subtask %d has no epic field", types.ErrMalformedRecord, id)
		}
		epicID, err := strconv.Atoi(fields[fieldEpic])
		if err != nil {
			return fmt.Errorf("%w: epic %q", types.ErrMalformedRecord, fields[fieldEpic])
		}
		snap.Subtasks = append(snap.Subtasks, types.Subtask{Task: base, EpicID: epicID})
	}
	return nil
}

func parseHistory(line string) ([]int, error) {
	parts := strings.Split(line, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: history id %q", types.ErrMalformedRecord, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
