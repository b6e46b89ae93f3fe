package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
)

type memReports struct {
	mu      sync.Mutex
	byID    map[string]report.Report
	order   []string
	findErr error
	saveErr map[string]error
	finds   int
	saves   int
}

func newMemReports(reports ...report.Report) *memReports {
	m := &memReports{byID: map[string]report.Report{}, saveErr: map[string]error{}}
	for _, r := range reports {
		m.byID[r.ID] = r
		m.order = append(m.order, r.ID)
	}
	return m
}

func (m *memReports) Find(_ context.Context, f report.Filter) ([]report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []report.Report
	for _, id := range m.order {
		r := m.byID[id]
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.ExcludeID != "" && r.ID == f.ExcludeID {
			continue
		}
		if len(f.AnyKeyword) > 0 {
			item := r.Item.Normalize()
			text := strings.ToLower(item.Name + "\n" + item.Description)
			hit := false
			for _, kw := range f.AnyKeyword {
				if strings.Contains(text, kw) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memReports) GetByID(_ context.Context, id string) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, report.ErrNotFound
	}
	return &r, nil
}

func (m *memReports) Save(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if err := m.saveErr[r.ID]; err != nil {
		return err
	}
	if _, ok := m.byID[r.ID]; !ok {
		return report.ErrNotFound
	}
	m.byID[r.ID] = *r
	return nil
}

func (m *memReports) status(id string) report.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].Status
}

type memNotifications struct {
	mu    sync.Mutex
	saved []notification.Notification
	err   error
	seq   int
}

func (m *memNotifications) Save(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	n.ID = fmt.Sprintf("n-%d", m.seq)
	m.saved = append(m.saved, *n)
	return nil
}

func (m *memNotifications) all() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Notification(nil), m.saved...)
}

type memUsers map[string]*user.User

func (m memUsers) Resolve(_ context.Context, id string) (*user.User, error) {
	if id == "broken" {
		return nil, errors.New("lookup failed")
	}
	return m[id], nil
}

type pushed struct {
	UserID  string
	Payload notification.PushPayload
}

type recordingChannel struct {
	mu     sync.Mutex
	pushes []pushed
	err    error
}

func (c *recordingChannel) Push(userID string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, _ := payload.(notification.PushPayload)
	c.pushes = append(c.pushes, pushed{UserID: userID, Payload: p})
	return c.err
}

func (c *recordingChannel) all() []pushed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]pushed(nil), c.pushes...)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func lostReport(id, owner, name, desc string) report.Report {
	return report.Report{
		ID:       id,
		Type:     report.TypeLost,
		Item:     report.StructuredItem(name, desc, ""),
		Location: "Library",
		Status:   report.StatusActive,
		OwnerID:  owner,
	}
}

func foundReport(id, owner, name, desc, contact string) report.Report {
	return report.Report{
		ID:          id,
		Type:        report.TypeFound,
		Item:        report.StructuredItem(name, desc, ""),
		Location:    "Cafeteria",
		ContactInfo: contact,
		Status:      report.StatusActive,
		OwnerID:     owner,
	}
}

func testUsers() memUsers {
	return memUsers{
		"alice": {ID: "alice", Name: "Alice", Email: "alice@campus.edu"},
		"bob":   {ID: "bob", Name: "Bob", Email: "bob@campus.edu"},
		"carol": {ID: "carol", Name: "Carol", Email: "carol@campus.edu"},
	}
}
