package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"wellmate-be/internal/entity"
	"wellmate-be/internal/repository/contract"
	"wellmate-be/internal/repository/specification"
	"wellmate-be/internal/repository/unitofwork"
	"wellmate-be/pkg/chatagent"
	"wellmate-be/pkg/events"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

// stall blocks like a hung database until the caller's deadline passes.
func stall(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- Unit of work ---

type fakeUnitOfWork struct {
	users  *fakeUserRepository
	health *fakeHealthRecordRepository
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		users:  &fakeUserRepository{users: map[uuid.UUID]*entity.User{}},
		health: &fakeHealthRecordRepository{},
	}
}

func (u *fakeUnitOfWork) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return u }
func (u *fakeUnitOfWork) Begin(ctx context.Context) error                         { return nil }
func (u *fakeUnitOfWork) Commit() error                                           { return nil }
func (u *fakeUnitOfWork) Rollback() error                                         { return nil }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository                 { return u.users }
func (u *fakeUnitOfWork) HealthRecordRepository() contract.HealthRecordRepository {
	return u.health
}
func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository { return nil }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository { return nil }

// --- Users ---

type fakeUserRepository struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	findCalls int
	findErr   error
	updateErr error
	stalled   bool
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	c := *user
	r.users[user.Id] = &c
	return nil
}

func (r *fakeUserRepository) Update(ctx context.Context, user *entity.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *user
	r.users[user.Id] = &c
	return nil
}

func (r *fakeUserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	if r.stalled {
		return nil, stall(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if matchUser(u, specs) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByUsername:
			if u.Username != s.Username {
				return false
			}
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

func (r *fakeUserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.users)), nil
}

// --- Health records ---

type fakeHealthRecordRepository struct {
	mu        sync.Mutex
	records   []*entity.HealthRecord
	createErr error
	stalled   bool
}

func (r *fakeHealthRecordRepository) Create(ctx context.Context, record *entity.HealthRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *record
	r.records = append(r.records, &c)
	return nil
}

func (r *fakeHealthRecordRepository) filter(specs []specification.Specification) []*entity.HealthRecord {
	var out []*entity.HealthRecord
	for _, rec := range r.records {
		if matchRecord(rec, specs) {
			c := *rec
			out = append(out, &c)
		}
	}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			sort.SliceStable(out, func(i, j int) bool {
				if s.Desc {
					return out[i].Timestamp.After(out[j].Timestamp)
				}
				return out[i].Timestamp.Before(out[j].Timestamp)
			})
		case specification.Pagination:
			if s.Limit > 0 && len(out) > s.Limit {
				out = out[:s.Limit]
			}
		}
	}
	return out
}

func matchRecord(rec *entity.HealthRecord, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.UserOwnedBy:
			if rec.UserId != s.UserID {
				return false
			}
		case specification.ByID:
			if rec.Id != s.ID {
				return false
			}
		case specification.ByDataType:
			if s.DataType != "" && s.DataType != "all" && rec.DataType != s.DataType {
				return false
			}
		case specification.TimestampSince:
			if rec.Timestamp.Before(s.Since) {
				return false
			}
		}
	}
	return true
}

func (r *fakeHealthRecordRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthRecord, error) {
	if r.stalled {
		return nil, stall(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(specs), nil
}

func (r *fakeHealthRecordRepository) Aggregate(ctx context.Context, specs ...specification.Specification) ([]*entity.HealthAggregate, error) {
	if r.stalled {
		return nil, stall(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byType := map[string]*entity.HealthAggregate{}
	sums := map[string]float64{}
	numeric := map[string]int{}
	var order []string
	for _, rec := range r.filter(specs) {
		agg, ok := byType[rec.DataType]
		if !ok {
			agg = &entity.HealthAggregate{DataType: rec.DataType}
			byType[rec.DataType] = agg
			order = append(order, rec.DataType)
		}
		agg.Count++
		if rec.NumericValue == nil {
			continue
		}
		v := *rec.NumericValue
		sums[rec.DataType] += v
		numeric[rec.DataType]++
		if agg.Min == nil || v < *agg.Min {
			minV := v
			agg.Min = &minV
		}
		if agg.Max == nil || v > *agg.Max {
			maxV := v
			agg.Max = &maxV
		}
	}

	out := make([]*entity.HealthAggregate, 0, len(order))
	for _, t := range order {
		agg := byType[t]
		if n := numeric[t]; n > 0 {
			avg := sums[t] / float64(n)
			agg.Average = &avg
		}
		out = append(out, agg)
	}
	return out, nil
}

func (r *fakeHealthRecordRepository) Delete(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if r.stalled {
		return 0, stall(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*entity.HealthRecord
	var deleted int64
	for _, rec := range r.records {
		if matchRecord(rec, specs) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return deleted, nil
}

// --- Agent ---

type fakeAgent struct {
	mu       sync.Mutex
	answer   string
	err      error
	stream   string
	requests []chatagent.Request
	botIDs   []string
}

func (a *fakeAgent) record(req chatagent.Request, opts []chatagent.Option) {
	options := &chatagent.Options{}
	for _, opt := range opts {
		opt(options)
	}
	a.mu.Lock()
	a.requests = append(a.requests, req)
	a.botIDs = append(a.botIDs, options.BotID)
	a.mu.Unlock()
}

func (a *fakeAgent) Send(ctx context.Context, req chatagent.Request, opts ...chatagent.Option) (string, error) {
	a.record(req, opts)
	if a.err != nil {
		return "", a.err
	}
	return a.answer, nil
}

func (a *fakeAgent) Stream(ctx context.Context, req chatagent.Request, opts ...chatagent.Option) (*chatagent.Stream, error) {
	a.record(req, opts)
	if a.err != nil {
		return nil, a.err
	}
	return chatagent.NewStream(io.NopCloser(strings.NewReader(a.stream)), req.ConversationID, func(line []byte) string {
		s, ok := strings.CutPrefix(string(line), "answer:")
		if !ok {
			return ""
		}
		return s
	}), nil
}

func (a *fakeAgent) lastRequest() chatagent.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[len(a.requests)-1]
}

// --- Events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
