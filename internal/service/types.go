// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TaskID is the server-assigned task identifier.
// The remote API sends it as a JSON number; it is kept as opaque text.
type TaskID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("task id: empty value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		*id = TaskID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id: %w", err)
	}
	*id = TaskID(n.String())
	return nil
}

// Task represents a single task item.
type Task struct {
	ID   TaskID `json:"task_id"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Credentials are the username and password of a pending login or signup.
// They are never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
