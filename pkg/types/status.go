package types

import "fmt"

// Status is the progress state shared by tasks, epics, and subtasks.
// The zero value is StatusNew.
type Status int

// Recognized statuses. Their string forms are the tokens written to the
// snapshot file.
const (
	StatusNew Status = iota
	StatusInProgress
	StatusDone
)

var statusNames = map[Status]string{
	StatusNew:        "NEW",
	StatusInProgress: "IN_PROGRESS",
	StatusDone:       "DONE",
}

// String returns the snapshot token for the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus converts a snapshot token to a Status.
// Returns ErrInvalidStatus for unknown tokens.
func ParseStatus(token string) (Status, error) {
	for s, name := range statusNames {
		if name == token {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, token)
}

// Kind tags which variant an Entity is.
type Kind int

// Entity kinds.
const (
	KindTask Kind = iota
	KindEpic
	KindSubtask
)

var kindNames = map[Kind]string{
	KindTask:    "TASK",
	KindEpic:    "EPIC",
	KindSubtask: "SUBTASK",
}

// String returns the snapshot token for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a snapshot token to a Kind.
// Returns ErrInvalidKind for unknown tokens.
func ParseKind(token string) (Kind, error) {
	for k, name := range kindNames {
		if name == token {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidKind, token)
}

// MarshalText encodes the status as its snapshot token.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a snapshot token.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText encodes the kind as its snapshot token.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
