package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		token   string
		want    Status
		wantErr error
	}{
		{token: "NEW", want: StatusNew},
		{token: "IN_PROGRESS", want: StatusInProgress},
		{token: "DONE", want: StatusDone},
		{token: "new", wantErr: ErrInvalidStatus},
		{token: "", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseStatus(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.token, got.String())
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindTask, KindEpic, KindSubtask} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("STORY")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestStatusZeroValueIsNew(t *testing.T) {
	var s Status
	assert.Equal(t, StatusNew, s)
	assert.True(t, s.Valid())
	assert.False(t, Status(42).Valid())
}

func TestStatusJSON(t *testing.T) {
	data, err := json.Marshal(Task{ID: 1, Name: "a", Status: StatusInProgress})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"IN_PROGRESS"`)

	var task Task
	require.NoError(t, json.Unmarshal(data, &task))
	assert.Equal(t, StatusInProgress, task.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"LATER"}`), &task))
}

func TestEntityKinds(t *testing.T) {
	entities := []Entity{
		&Task{ID: 1},
		&Epic{Task: Task{ID: 2}},
		&Subtask{Task: Task{ID: 3}, EpicID: 2},
	}
	wantKinds := []Kind{KindTask, KindEpic, KindSubtask}

	for i, e := range entities {
		assert.Equal(t, wantKinds[i], e.Kind())
		assert.Equal(t, i+1, e.Base().ID)
	}
}

func TestEpicBaseIsEmbeddedTask(t *testing.T) {
	e := &Epic{Task: Task{ID: 7, Name: "epic"}}
	e.Base().Status = StatusDone
	assert.Equal(t, StatusDone, e.Status, "Base must alias the embedded record")
}

func TestEpicCloneIsIndependent(t *testing.T) {
	e := &Epic{Task: Task{ID: 1, Name: "epic"}, SubtaskIDs: []int{2, 3}}

	c := e.Clone().(*Epic)
	c.AddSubtaskID(4)
	c.Name = "changed"

	assert.Equal(t, []int{2, 3}, e.SubtaskIDs)
	assert.Equal(t, "epic", e.Name)
	assert.Equal(t, []int{2, 3, 4}, c.SubtaskIDs)
}

func TestEpicSubtaskIDs(t *testing.T) {
	e := &Epic{}
	e.AddSubtaskID(2)
	e.AddSubtaskID(5)
	e.AddSubtaskID(3)

	e.RemoveSubtaskID(5)
	assert.Equal(t, []int{2, 3}, e.SubtaskIDs)

	e.RemoveSubtaskID(99)
	assert.Equal(t, []int{2, 3}, e.SubtaskIDs, "removing an absent id is a no-op")

	e.ClearSubtaskIDs()
	assert.Empty(t, e.SubtaskIDs)
	assert.NotNil(t, e.SubtaskIDs)
}

func TestSubtaskClone(t *testing.T) {
	s := &Subtask{Task: Task{ID: 3, Name: "sub"}, EpicID: 1}
	c := s.Clone().(*Subtask)
	c.EpicID = 9
	assert.Equal(t, 1, s.EpicID)
}
