package service

import (
	"context"
	"sync"
	"time"

	"ssonotify/internal/model"
)

// fakeStore is an in-memory notifications table. It backs both the
// in-app sender and the recency check, mirroring how the real table
// powers deduplication.
type fakeStore struct {
	mu        sync.Mutex
	rows      []fakeRow
	insertErr error
	panicOn   string // member ID whose insert panics
	now       func() time.Time
}

type fakeRow struct {
	memberID string
	category model.Category
	sentAt   time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Now}
}

func (s *fakeStore) Insert(_ context.Context, memberID string, category model.Category, title, body string) (int, error) {
	if s.panicOn != "" && memberID == s.panicOn {
		panic("store corrupted for " + memberID)
	}
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, fakeRow{memberID: memberID, category: category, sentAt: s.now()})
	return len(s.rows), nil
}

func (s *fakeStore) SentWithin(_ context.Context, memberID string, category model.Category, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	since := s.now().Add(-window)
	for _, row := range s.rows {
		if row.memberID == memberID && row.category == category && !row.sentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) count(memberID string, category model.Category) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.memberID == memberID && row.category == category {
			n++
		}
	}
	return n
}

// fakeGuard is a canned dedup decision.
type fakeGuard struct {
	mu        sync.Mutex
	duplicate bool
	checked   []string
	marked    []string
}

func (g *fakeGuard) IsDuplicate(_ context.Context, memberID string, category model.Category) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checked = append(g.checked, memberID)
	return g.duplicate
}

func (g *fakeGuard) MarkSent(_ context.Context, memberID string, category model.Category) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.marked = append(g.marked, memberID)
}

// fakeLine records pushes and can be forced to fail.
type fakeLine struct {
	mu      sync.Mutex
	enabled bool
	err     error
	pushed  []string
}

func (l *fakeLine) Enabled() bool { return l.enabled }

func (l *fakeLine) Push(_ context.Context, to, title, body string) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pushed = append(l.pushed, to)
	return nil
}

// fakeSMS records sends and can be forced to fail.
type fakeSMS struct {
	mu      sync.Mutex
	enabled bool
	err     error
	sent    []string
}

func (s *fakeSMS) Enabled() bool { return s.enabled }

func (s *fakeSMS) Send(_ context.Context, phone, message string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, phone)
	return nil
}
