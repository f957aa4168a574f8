package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

type ProjectStatus string

const (
	StatusPlanning   ProjectStatus = "Planning"
	StatusInProgress ProjectStatus = "InProgress"
	StatusOnHold     ProjectStatus = "OnHold"
	StatusCompleted  ProjectStatus = "Completed"
	StatusCancelled  ProjectStatus = "Cancelled"
)

var ProjectStatuses = []ProjectStatus{StatusPlanning, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ReopenedProgress is the progress a project falls back to when its status
// moves away from Completed.
const ReopenedProgress = 0.95

// Project tracks a piece of work with a status, a priority and a progress
// fraction in [0,1].
type Project struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	Status       ProjectStatus
	Priority     Priority
	Progress     float64
	DueDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ThumbnailRef string
}

func (p *Project) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusPlanning
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	p.Progress = ClampProgress(p.Progress)
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return common.Validation("project title must not be blank")
	}
	if _, err := ParseStatus(string(p.Status)); err != nil {
		return err
	}
	if _, err := ParsePriority(string(p.Priority)); err != nil {
		return err
	}
	return nil
}

// ClampProgress bounds p to [0,1]. NaN is treated as 0.
func ClampProgress(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// ReconcileProgress returns the progress and status to store when progress
// is set to p on a project currently in status.
func ReconcileProgress(status ProjectStatus, p float64) (float64, ProjectStatus) {
	p = ClampProgress(p)
	if p == 1 && status != StatusCompleted {
		return p, StatusCompleted
	}
	return p, status
}

// ReconcileStatus returns the progress and status to store when a project
// with the given current status and progress moves to next.
func ReconcileStatus(current ProjectStatus, progress float64, next ProjectStatus) (float64, ProjectStatus) {
	if current == StatusCompleted && next != StatusCompleted {
		return ReopenedProgress, next
	}
	return progress, next
}

func normalizeEnum(s string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// ParseStatus accepts any casing and separator style, e.g. "in progress",
// "IN_PROGRESS" or "InProgress".
func ParseStatus(s string) (ProjectStatus, error) {
	n := normalizeEnum(s)
	for _, v := range ProjectStatuses {
		if strings.ToLower(string(v)) == n {
			return v, nil
		}
	}
	return "", common.Validation(fmt.Sprintf("unknown project status %q", s))
}

func ParsePriority(s string) (Priority, error) {
	n := normalizeEnum(s)
	for _, v := range Priorities {
		if strings.ToLower(string(v)) == n {
			return v, nil
		}
	}
	return "", common.Validation(fmt.Sprintf("unknown priority %q", s))
}
