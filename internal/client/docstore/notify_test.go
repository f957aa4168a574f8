package docstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/amanotes/internal/common"
	"github.com/stretchr/testify/require"
)

type fakeListener struct {
	events   chan any // string payload or error
	released atomic.Int32
}

func (l *fakeListener) Wait(ctx context.Context) (string, error) {
	select {
	case ev := <-l.events:
		if err, ok := ev.(error); ok {
			return "", err
		}
		return ev.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *fakeListener) Close() error {
	l.released.Add(1)
	return nil
}

type fakeNotifier struct {
	listener *fakeListener
	channel  string
	err      error
}

func (n *fakeNotifier) Listen(ctx context.Context, channel string) (Listener, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.channel = channel
	return n.listener, nil
}

func titlesOf(docs []Document) ([]string, error) {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		var v struct{ Title string }
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v.Title)
	}
	return out, nil
}

func next(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no emission")
		return nil
	}
}

func TestWatch_ReemitsOnOwnerNotification(t *testing.T) {
	l := &fakeListener{events: make(chan any, 4)}
	n := &fakeNotifier{listener: l}
	c, mock, _ := newMockClient(t, n)
	now := time.Now()

	mock.ExpectQuery(`SELECT`).WithArgs("notes", "u1").
		WillReturnRows(sqlmock.NewRows(docCols).AddRow("n1", "u1", []byte(`{"title":"a"}`), now, now))
	mock.ExpectQuery(`SELECT`).WithArgs("notes", "u1").
		WillReturnRows(sqlmock.NewRows(docCols).
			AddRow("n2", "u1", []byte(`{"title":"b"}`), now, now).
			AddRow("n1", "u1", []byte(`{"title":"a"}`), now, now))

	sub, err := Watch(context.Background(), c.Collection("notes").Query("u1"), titlesOf)
	require.NoError(t, err)
	require.Equal(t, "docs_notes", n.channel)

	require.Equal(t, []string{"a"}, next(t, sub.C()))

	// чужое уведомление игнорируется
	l.events <- "someone-else"
	l.events <- "u1"
	require.Equal(t, []string{"b", "a"}, next(t, sub.C()))

	require.NoError(t, sub.Close())
	require.Equal(t, int32(1), l.released.Load())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWatch_ListenerErrorTerminatesAndReleasesOnce(t *testing.T) {
	l := &fakeListener{events: make(chan any, 1)}
	c, mock, _ := newMockClient(t, &fakeNotifier{listener: l})
	now := time.Now()

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows(docCols).AddRow("n1", "u1", []byte(`{"title":"a"}`), now, now))

	sub, err := Watch(context.Background(), c.Collection("notes").Query("u1"), titlesOf)
	require.NoError(t, err)
	next(t, sub.C())

	l.events <- errors.New("connection reset")

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate")
	}
	require.ErrorIs(t, sub.Err(), common.ErrTransport)
	require.Equal(t, int32(1), l.released.Load())

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	require.Equal(t, int32(1), l.released.Load())
}

func TestWatch_ListenFailure(t *testing.T) {
	c, _, _ := newMockClient(t, &fakeNotifier{err: common.ErrTransport})

	_, err := Watch(context.Background(), c.Collection("notes").Query("u1"), titlesOf)
	require.ErrorIs(t, err, common.ErrTransport)
}

func TestWatch_NoNotifier(t *testing.T) {
	c, _, _ := newMockClient(t, nil)

	_, err := Watch(context.Background(), c.Collection("notes").Query("u1"), titlesOf)
	require.ErrorIs(t, err, common.ErrTransport)
}

func TestWatch_InvalidQueryDoesNotListen(t *testing.T) {
	l := &fakeListener{events: make(chan any)}
	n := &fakeNotifier{listener: l}
	c, _, _ := newMockClient(t, n)

	_, err := Watch(context.Background(), c.Collection("notes").Query("u1").OrderBy("bad field", Asc), titlesOf)
	require.Error(t, err)
	require.Empty(t, n.channel)
}
