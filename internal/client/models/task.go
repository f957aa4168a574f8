package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

// Task is a to-do item, optionally attached to a project.
type Task struct {
	ID        string
	OwnerID   string
	Title     string
	Completed bool
	ProjectID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return common.Validation("task title must not be blank")
	}
	return nil
}
