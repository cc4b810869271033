package photo

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/photoshare/internal/apperr"
	"github.com/aliskhannn/photoshare/internal/model"
)

// The stub driver plays a master that answers queries from a scripted
// result queue and a replica that refuses every connection, so write
// routing is observable without a real cluster.

type stubResult struct {
	cols []string
	rows [][]driver.Value
}

type stubState struct {
	mu      sync.Mutex
	queries []string
	results []stubResult
}

func (s *stubState) push(res stubResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
}

func (s *stubState) take(query string) (stubResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if len(s.results) == 0 {
		return stubResult{}, errors.New("no scripted result for query")
	}
	res := s.results[0]
	s.results = s.results[1:]
	return res, nil
}

func (s *stubState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = nil
	s.results = nil
}

var masterState = &stubState{}

type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) {
	if name != "master" {
		return nil, errors.New("replica is read-only")
	}
	return &stubConn{state: masterState}, nil
}

type stubConn struct{ state *stubState }

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{state: c.state, query: query}, nil
}

func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return nil, errors.New("not scripted") }

type stubStmt struct {
	state *stubState
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	if _, err := s.state.take(s.query); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	res, err := s.state.take(s.query)
	if err != nil {
		return nil, err
	}
	return &stubRows{res: res}, nil
}

type stubRows struct {
	res stubResult
	i   int
}

func (r *stubRows) Columns() []string { return r.res.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.res.rows) {
		return io.EOF
	}
	copy(dest, r.res.rows[r.i])
	r.i++
	return nil
}

var registerOnce sync.Once

func stubDB(t *testing.T) (*dbpg.DB, *stubState) {
	t.Helper()
	registerOnce.Do(func() { sql.Register("photorepostub", stubDriver{}) })

	master, err := sql.Open("photorepostub", "master")
	require.NoError(t, err)
	replica, err := sql.Open("photorepostub", "replica")
	require.NoError(t, err)

	masterState.reset()
	return &dbpg.DB{Master: master, Slaves: []*sql.DB{replica}}, masterState
}

func TestCreate_WritesThroughMaster(t *testing.T) {
	db, state := stubDB(t)
	repo := NewRepository(db)

	id := uuid.New()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	state.push(stubResult{
		cols: []string{"id", "created_at", "updated_at"},
		rows: [][]driver.Value{{id.String(), created, created}},
	})

	// The replica refuses connections, so the insert only succeeds when
	// it is pinned to the master.
	p, err := repo.Create(context.Background(), model.Photo{
		OwnerID: uuid.New(),
		Title:   "Sunset",
		Status:  model.StatusProcessing,
	})
	require.NoError(t, err)
	require.Equal(t, id, p.ID)
	require.Equal(t, created, p.CreatedAt)
	require.Equal(t, created, p.UpdatedAt)

	require.Len(t, state.queries, 1)
	require.Contains(t, state.queries[0], "INSERT INTO photos")
}

func TestUpdateThumbnail_ReturnsServerTime(t *testing.T) {
	db, state := stubDB(t)
	repo := NewRepository(db)

	key := "photos/thumbnails/thumb_x.jpg"
	bumped := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	state.push(stubResult{
		cols: []string{"updated_at"},
		rows: [][]driver.Value{{bumped}},
	})

	ts, err := repo.UpdateThumbnail(context.Background(), uuid.New(), ThumbnailUpdate{
		Key:    &key,
		Status: model.StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, bumped, ts)

	// No matching row comes back as not found.
	state.push(stubResult{cols: []string{"updated_at"}})
	_, err = repo.UpdateThumbnail(context.Background(), uuid.New(), ThumbnailUpdate{Status: model.StatusCompleted})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
