// Package session picks the storage backend for the signed-in user and
// hands out the service set bound to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/amanotes/internal/client/docstore"
	"github.com/dmitrijs2005/amanotes/internal/client/localstore"
	"github.com/dmitrijs2005/amanotes/internal/client/models"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/notes"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/projects"
	"github.com/dmitrijs2005/amanotes/internal/client/repositories/tasks"
	"github.com/dmitrijs2005/amanotes/internal/client/services"
	"github.com/dmitrijs2005/amanotes/internal/common"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLocal:
		return ModeLocal, nil
	case ModeCloud:
		return ModeCloud, nil
	}
	return "", common.Validation(fmt.Sprintf("unknown mode %q, use local or cloud", s))
}

var ErrCloudUnavailable = errors.New("cloud backend is not configured")

// Services is the service set of one session.
type Services struct {
	Kind     services.SessionKind
	User     *models.User
	Backend  Mode
	Notes    services.NoteService
	Tasks    services.TaskService
	Projects services.ProjectService
}

type Resolver struct {
	auth  services.AuthService
	local *localstore.Store
	cloud *docstore.Client
	mode  func() Mode
	now   services.Clock
}

// NewResolver builds a resolver. cloud may be nil; mode is consulted on
// every call so a changed preference takes effect on the next resolve.
func NewResolver(auth services.AuthService, local *localstore.Store, cloud *docstore.Client, mode func() Mode, now services.Clock) *Resolver {
	if mode == nil {
		mode = func() Mode { return ModeLocal }
	}
	return &Resolver{auth: auth, local: local, cloud: cloud, mode: mode, now: now}
}

// Services resolves the backend for the current session. Signed-out callers
// get common.ErrUnauthorized.
func (r *Resolver) Services(ctx context.Context) (*Services, error) {
	sess, err := r.auth.Session(ctx)
	if err != nil {
		return nil, err
	}

	switch sess.Kind {
	case services.FederatedSession:
		return r.cloudServices(sess)
	case services.LocalSession:
		if r.mode() == ModeCloud {
			return r.cloudServices(sess)
		}
		return r.localServices(sess), nil
	default:
		return nil, common.ErrUnauthorized
	}
}

func (r *Resolver) localServices(sess services.Session) *Services {
	db, tr := r.local.DB, r.local.Tracker
	return &Services{
		Kind:     sess.Kind,
		User:     sess.User,
		Backend:  ModeLocal,
		Notes:    services.NewNoteService(notes.NewSQLiteRepository(db, tr), r.now),
		Tasks:    services.NewTaskService(tasks.NewSQLiteRepository(db, tr), r.now),
		Projects: services.NewProjectService(projects.NewSQLiteRepository(db, tr), r.now),
	}
}

func (r *Resolver) cloudServices(sess services.Session) (*Services, error) {
	if r.cloud == nil {
		return nil, ErrCloudUnavailable
	}
	owner := sess.User.OwnerID
	if owner == "" {
		owner = services.OwnerIDForEmail(sess.User.Email)
	}
	return &Services{
		Kind:     sess.Kind,
		User:     sess.User,
		Backend:  ModeCloud,
		Notes:    services.NewNoteService(notes.NewCloudRepository(r.cloud, owner), r.now),
		Tasks:    services.NewTaskService(tasks.NewCloudRepository(r.cloud, owner), r.now),
		Projects: services.NewProjectService(projects.NewCloudRepository(r.cloud, owner), r.now),
	}, nil
}
