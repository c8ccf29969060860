package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gtodo/internal/service"
	"gtodo/internal/tasklist"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int            // 1-based position in the list, 0 if ID is set
	ID  service.TaskID // server id, empty if Num is set
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// idPrefix marks a reference by server id.
const idPrefix = "id:"

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. If first arg is all digits → position in the list (1-based)
// 2. If first arg is id:<task_id> → server id
// 3. Otherwise → error: invalid task reference: <ref>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}

	firstArg := args[0]

	if isAllDigits(firstArg) {
		num, err := strconv.Atoi(firstArg)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", firstArg)
		}
		return TaskRef{Num: num}, nil
	}

	if id, ok := strings.CutPrefix(firstArg, idPrefix); ok {
		if strings.TrimSpace(id) == "" {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", firstArg)
		}
		return TaskRef{ID: service.TaskID(id)}, nil
	}

	return TaskRef{}, fmt.Errorf("invalid task reference: %s", firstArg)
}

// isAllDigits returns true if s is non-empty and contains only digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// errOutOfRange is returned by resolveTaskRef for a position past the list.
type errOutOfRange int

func (e errOutOfRange) Error() string {
	return fmt.Sprintf("task number out of range: %d", int(e))
}

// resolveTaskRef turns ref into a server id. Positions are resolved against
// a freshly loaded list; ids are passed through for the server to check.
func resolveTaskRef(ctx context.Context, tasks *tasklist.Synchronizer, ref TaskRef) (service.TaskID, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}
	if err := tasks.Refresh(ctx); err != nil {
		return "", err
	}
	task, ok := tasks.At(ref.Num)
	if !ok {
		return "", errOutOfRange(ref.Num)
	}
	return task.ID, nil
}
