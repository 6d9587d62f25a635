// Package types defines the task, epic, and subtask records, the Backend
// interface, configuration, and standard error types for the tracker.
package types
