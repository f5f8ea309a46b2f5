package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"hotel_ratecheck/internal/domain"
)

// ---- fakes ----

type fakeStore struct {
	mu       sync.Mutex
	res      map[string]domain.ReservationConfig
	order    []string
	runs     []domain.CheckRun
	saveErr  error
	listErr  error
	listGate chan struct{} // when set, listing blocks until closed
}

func newStore(cfgs ...domain.ReservationConfig) *fakeStore {
	s := &fakeStore{res: map[string]domain.ReservationConfig{}}
	for _, c := range cfgs {
		_ = s.UpsertReservation(context.Background(), c)
	}
	return s
}

func (s *fakeStore) ListReservations(ctx context.Context) ([]domain.ReservationConfig, error) {
	if s.listGate != nil {
		<-s.listGate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.ReservationConfig
	for _, id := range s.order {
		out = append(out, s.res[id])
	}
	return out, nil
}

func (s *fakeStore) GetReservation(ctx context.Context, id string) (domain.ReservationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.res[id]
	if !ok {
		return domain.ReservationConfig{}, domain.ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) UpsertReservation(ctx context.Context, c domain.ReservationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.res[c.ID]; !ok {
		s.order = append(s.order, c.ID)
	}
	s.res[c.ID] = c
	return nil
}

func (s *fakeStore) DeleteReservation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.res[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.res, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) SaveRun(ctx context.Context, run domain.CheckRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.runs = append(s.runs, run)
	return nil
}

func (s *fakeStore) LatestRun(ctx context.Context) (domain.CheckRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.runs) == 0 {
		return domain.CheckRun{}, domain.ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// fakeCache round-trips through JSON like the Redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// fakeSource serves canned records per property. A non-nil gate blocks every
// call until it is closed.
type fakeSource struct {
	rates  map[string][]domain.RateRecord
	errs   map[string]error
	gate   chan struct{}
	delay  time.Duration
	active int32
	peak   int32
}

func (f *fakeSource) FetchRates(ctx context.Context, cfg domain.ReservationConfig) ([]domain.RateRecord, error) {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.errs[cfg.PropertyID]; err != nil {
		return nil, err
	}
	return f.rates[cfg.PropertyID], nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	alerts    []domain.ComparisonResult
	summaries []domain.CheckRun
	err       error
}

func (n *fakeNotifier) NotifyCheaperRate(ctx context.Context, res domain.ComparisonResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, res)
	return n.err
}

func (n *fakeNotifier) NotifySummary(ctx context.Context, run domain.CheckRun) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, run)
	return n.err
}

// ---- builders ----

var errUpstream = errors.New("upstream 502")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func booking(id, property, original string) domain.ReservationConfig {
	return domain.ReservationConfig{
		ID:                   id,
		PropertyID:           property,
		CheckIn:              domain.NewDate(2026, time.March, 1),
		CheckOut:             domain.NewDate(2026, time.March, 3),
		Adults:               2,
		NumRooms:             1,
		OriginalRatePerNight: dec(original),
		Currency:             "CAD",
	}
}

func rate(name, price string, ref domain.Refundability) domain.RateRecord {
	p := dec(price)
	return domain.RateRecord{
		RoomTypeCode:  "KNGS",
		RoomTypeName:  "Guest room, 1 King",
		RateName:      name,
		PricePerNight: &p,
		Currency:      "CAD",
		Refundability: ref,
	}
}
