package codec

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

func sampleSnapshot() types.Snapshot {
	return types.Snapshot{
		Tasks: []types.Task{
			{ID: 1, Name: "Task 1", Description: "first task", Status: types.StatusNew},
			{ID: 5, Name: "Task 2", Description: "second task", Status: types.StatusDone},
		},
		Epics: []types.Epic{
			{Task: types.Task{ID: 2, Name: "Epic 1", Description: "epic", Status: types.StatusInProgress}, SubtaskIDs: []int{}},
		},
		Subtasks: []types.Subtask{
			{Task: types.Task{ID: 3, Name: "Sub 1", Description: "a", Status: types.StatusNew}, EpicID: 2},
			{Task: types.Task{ID: 4, Name: "Sub 2", Description: "b", Status: types.StatusInProgress}, EpicID: 2},
		},
		History: []int{2, 3, 5, 1},
	}
}

const sampleText = `id,type,name,status,description,epic
1,TASK,Task 1,NEW,first task,
5,TASK,Task 2,DONE,second task,
2,EPIC,Epic 1,IN_PROGRESS,epic,
3,SUBTASK,Sub 1,NEW,a,2
4,SUBTASK,Sub 2,IN_PROGRESS,b,2

2,3,5,1`

func TestEncode(t *testing.T) {
	assert.Equal(t, sampleText, string(Encode(sampleSnapshot())))
}

func TestEncodeEmptyHistoryOmitsLine(t *testing.T) {
	snap := types.Snapshot{Tasks: []types.Task{{ID: 1, Name: "t", Description: "d"}}}
	assert.Equal(t, Header+"\n1,TASK,t,NEW,d,\n\n", string(Encode(snap)))
}

func TestDecode(t *testing.T) {
	snap, err := Decode([]byte(sampleText))
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), snap)
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, in := range []string{"", "\n", "  \n\n"} {
		snap, err := Decode([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, 0, snap.Len())
		assert.Empty(t, snap.History)
	}
}

func TestDecodeHeaderOnly(t *testing.T) {
	snap, err := Decode([]byte(Header + "\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}

func TestDecodeTolerantLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want types.Snapshot
	}{
		{
			name: "missing trailing epic field",
			in:   Header + "\n1,TASK,t,NEW,d\n2,EPIC,e,DONE,x\n",
			want: types.Snapshot{
				Tasks: []types.Task{{ID: 1, Name: "t", Description: "d"}},
				Epics: []types.Epic{{Task: types.Task{ID: 2, Name: "e", Description: "x", Status: types.StatusDone}, SubtaskIDs: []int{}}},
			},
		},
		{
			name: "crlf line endings",
			in:   Header + "\r\n1,TASK,t,NEW,d,\r\n\r\n1\r\n",
			want: types.Snapshot{
				Tasks:   []types.Task{{ID: 1, Name: "t", Description: "d"}},
				History: []int{1},
			},
		},
		{
			name: "history with spaces",
			in:   Header + "\n1,TASK,t,NEW,d,\n\n 1 , 1\n",
			want: types.Snapshot{
				Tasks:   []types.Task{{ID: 1, Name: "t", Description: "d"}},
				History: []int{1, 1},
			},
		},
		{
			name: "empty name and description",
			in:   Header + "\n1,TASK,,NEW,,\n",
			want: types.Snapshot{Tasks: []types.Task{{ID: 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "unknown type", line: "1,STORY,n,NEW,d,", wantErr: types.ErrInvalidKind},
		{name: "unknown status", line: "1,TASK,n,LATER,d,", wantErr: types.ErrInvalidStatus},
		{name: "bad id", line: "x,TASK,n,NEW,d,", wantErr: types.ErrMalformedRecord},
		{name: "too few fields", line: "1,TASK,n", wantErr: types.ErrMalformedRecord},
		{name: "comma in description", line: "1,TASK,n,NEW,a,b,", wantErr: types.ErrMalformedRecord},
		{name: "subtask without epic", line: "1,SUBTASK,n,NEW,d", wantErr: types.ErrMalformedRecord},
		{name: "subtask bad epic", line: "1,SUBTASK,n,NEW,d,", wantErr: types.ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode([]byte(Header + "\n" + tt.line + "\n"))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "line 2")
			assert.Equal(t, 0, snap.Len(), "no partial result")
		})
	}
}

func TestDecodeBadHistory(t *testing.T) {
	_, err := Decode([]byte(Header + "\n1,TASK,n,NEW,d,\n\n1,x\n"))
	assert.ErrorIs(t, err, types.ErrMalformedRecord)
}

// genText draws comma- and newline-free text, the only text the format can
// carry.
func genText(t *rapid.T, label string) string {
	return rapid.StringMatching(`[A-Za-z0-9 .:;!?_-]{0,24}`).Draw(t, label)
}

func TestEncodeDecodeRoundTripProperty(t *testing.T) {
	statuses := []types.Status{types.StatusNew, types.StatusInProgress, types.StatusDone}

	rapid.Check(t, func(t *rapid.T) {
		var snap types.Snapshot
		nextID := 1
		record := func(label string) types.Task {
			id := nextID
			nextID++
			return types.Task{
				ID:          id,
				Name:        genText(t, label+"Name"),
				Description: genText(t, label+"Desc"),
				Status:      rapid.SampledFrom(statuses).Draw(t, label+"Status"),
			}
		}

		for range rapid.IntRange(0, 5).Draw(t, "nTasks") {
			snap.Tasks = append(snap.Tasks, record("task"))
		}
		for range rapid.IntRange(0, 3).Draw(t, "nEpics") {
			snap.Epics = append(snap.Epics, types.Epic{Task: record("epic"), SubtaskIDs: []int{}})
		}
		if len(snap.Epics) > 0 {
			for i := range rapid.IntRange(0, 5).Draw(t, "nSubtasks") {
				owner := rapid.SampledFrom(snap.Epics).Draw(t, fmt.Sprintf("owner%d", i))
				snap.Subtasks = append(snap.Subtasks, types.Subtask{Task: record("sub"), EpicID: owner.ID})
			}
		}
		if nextID > 1 {
			ids := make([]int, 0, nextID-1)
			for id := 1; id < nextID; id++ {
				ids = append(ids, id)
			}
			perm := rapid.Permutation(ids).Draw(t, "historyOrder")
			snap.History = perm[:rapid.IntRange(0, len(perm)).Draw(t, "historyLen")]
		}

		got, err := Decode(Encode(snap))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(snap.History) == 0 {
			snap.History = nil
		}
		assert.Equal(t, snap, got)
	})
}
