package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/amanotes/internal/common"
)

// Note is a free-form text record grouped by category.
type Note struct {
	ID            string
	OwnerID       string
	Title         string
	Content       string
	Category      string
	Favorite      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AttachmentRef string
}

func (n *Note) ApplyDefaults() {
	if strings.TrimSpace(n.Category) == "" {
		n.Category = common.DefaultCategory
	}
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return common.Validation("note title must not be blank")
	}
	return nil
}
