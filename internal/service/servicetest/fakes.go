// Package servicetest holds in-memory repositories for service tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/malfunction"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/part"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/robot"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/scoreboard"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/domain/warehouse"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/robot-fleet-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

const (
	WarehouseID = "b7e6d5c4-b3a2-4190-8f7e-6d5c4b3a2910"
	EmployeeID  = "0c8a7e1d-2b3c-4d5e-8f90-a1b2c3d4e5f6"
)

// Context returns a request context for a technician of WarehouseID.
func Context() context.Context {
	ctx, err := jwt.ContextWithIdentity(context.Background(), auth.Identity{
		UserID:      "6f1c2b8e-9f5e-4a36-9b5e-1e2a3b4c5d6e",
		EmployeeID:  EmployeeID,
		WarehouseID: WarehouseID,
		Role:        auth.RoleTechnician,
	})
	if err != nil {
		panic(err)
	}
	return ctx
}

// ========================================
// WAREHOUSES
// ========================================

type Warehouses struct {
	Items []warehouse.Warehouse
}

// NewWarehouses holds one active warehouse in tz.
func NewWarehouses(tz string) *Warehouses {
	return &Warehouses{Items: []warehouse.Warehouse{{ID: WarehouseID, Code: "WAW1", Name: "Warsaw 1", Timezone: tz, IsActive: true}}}
}

func (w *Warehouses) GetByID(_ context.Context, id string) (warehouse.Warehouse, error) {
	for _, wh := range w.Items {
		if wh.ID == id {
			return wh, nil
		}
	}
	return warehouse.Warehouse{}, warehouse.ErrWarehouseNotFound
}

func (w *Warehouses) ListActive(context.Context) ([]warehouse.Warehouse, error) {
	var out []warehouse.Warehouse
	for _, wh := range w.Items {
		if wh.IsActive {
			out = append(out, wh)
		}
	}
	return out, nil
}

// ========================================
// EMPLOYEES
// ========================================

type Employees struct {
	Items map[string]employee.Employee
}

func NewEmployees(es ...employee.Employee) *Employees {
	e := &Employees{Items: make(map[string]employee.Employee)}
	for _, emp := range es {
		e.Items[emp.ID] = emp
	}
	return e
}

func (e *Employees) GetByID(_ context.Context, id string, warehouseID string) (employee.Employee, error) {
	emp, ok := e.Items[id]
	if !ok || emp.WarehouseID != warehouseID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (e *Employees) GetDisplayInfo(_ context.Context, warehouseID string, ids []string) (map[string]employee.DisplayInfo, error) {
	out := make(map[string]employee.DisplayInfo)
	for _, id := range ids {
		if emp, ok := e.Items[id]; ok && emp.WarehouseID == warehouseID {
			out[id] = employee.DisplayInfo{ID: emp.ID, EmployeeCode: emp.EmployeeCode, FullName: emp.FullName}
		}
	}
	return out, nil
}

// ========================================
// ROBOTS
// ========================================

type Robots struct {
	mu      sync.Mutex
	Items   map[string]robot.Robot
	Changes []robot.StatusChange
}

func NewRobots(rs ...robot.Robot) *Robots {
	r := &Robots{Items: make(map[string]robot.Robot)}
	for _, rb := range rs {
		r.Items[rb.ID] = rb
	}
	return r
}

func (r *Robots) GetByID(_ context.Context, id string, warehouseID string) (robot.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb, ok := r.Items[id]
	if !ok || rb.WarehouseID != warehouseID {
		return robot.Robot{}, robot.ErrRobotNotFound
	}
	return rb, nil
}

func (r *Robots) List(_ context.Context, warehouseID string, filter robot.ListRobotsFilter) ([]robot.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []robot.Robot
	for _, rb := range r.Items {
		if rb.WarehouseID != warehouseID {
			continue
		}
		if filter.Type != nil && string(rb.Type) != *filter.Type {
			continue
		}
		if filter.Status != nil && string(rb.Status) != *filter.Status {
			continue
		}
		out = append(out, rb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (r *Robots) GetByIDs(_ context.Context, warehouseID string, ids []string) (map[string]robot.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]robot.Robot)
	for _, id := range ids {
		if rb, ok := r.Items[id]; ok && rb.WarehouseID == warehouseID {
			out[id] = rb
		}
	}
	return out, nil
}

func (r *Robots) CountByStatus(_ context.Context, warehouseID string) (map[robot.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[robot.Status]int)
	for _, rb := range r.Items {
		if rb.WarehouseID == warehouseID {
			out[rb.Status]++
		}
	}
	return out, nil
}

func (r *Robots) UpdateStatus(_ context.Context, id string, warehouseID string, status robot.Status) (robot.Robot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rb, ok := r.Items[id]
	if !ok || rb.WarehouseID != warehouseID {
		return robot.Robot{}, robot.ErrRobotNotFound
	}
	rb.Status = status
	r.Items[id] = rb
	return rb, nil
}

func (r *Robots) CreateStatusChange(_ context.Context, c robot.StatusChange) (robot.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.Changes = append(r.Changes, c)
	return c, nil
}

func (r *Robots) ListStatusChangesPage(_ context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]robot.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var in []robot.StatusChange
	for _, c := range r.Changes {
		if c.WarehouseID == warehouseID && !c.ChangedAt.Before(from) && c.ChangedAt.Before(to) {
			in = append(in, c)
		}
	}
	return page(in, offset, limit), nil
}

// ========================================
// EXCEPTIONS
// ========================================

type Exceptions struct {
	mu    sync.Mutex
	Items []malfunction.Exception

	// PageCalls records the offsets ListPage was called with.
	PageCalls []int
}

func (e *Exceptions) Create(_ context.Context, ex malfunction.Exception) (malfunction.Exception, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}
	ex.UpdatedAt = ex.CreatedAt
	e.Items = append(e.Items, ex)
	return ex, nil
}

func (e *Exceptions) CreateMany(ctx context.Context, es []malfunction.Exception) (int64, error) {
	for _, ex := range es {
		if _, err := e.Create(ctx, ex); err != nil {
			return 0, err
		}
	}
	return int64(len(es)), nil
}

func (e *Exceptions) GetByID(_ context.Context, id string, warehouseID string) (malfunction.Exception, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ex := range e.Items {
		if ex.ID == id && ex.WarehouseID == warehouseID {
			return ex, nil
		}
	}
	return malfunction.Exception{}, malfunction.ErrExceptionNotFound
}

func (e *Exceptions) UpdateRepairStatus(_ context.Context, id string, warehouseID string, status malfunction.RepairStatus, endAt *time.Time) (malfunction.Exception, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, ex := range e.Items {
		if ex.ID == id && ex.WarehouseID == warehouseID {
			ex.RepairStatus = status
			ex.ErrorEndAt = endAt
			e.Items[i] = ex
			return ex, nil
		}
	}
	return malfunction.Exception{}, malfunction.ErrExceptionNotFound
}

// ListPage mirrors the SQL: resolved starts in range, unresolved rows by
// created_at in range.
func (e *Exceptions) ListPage(_ context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]malfunction.Exception, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.PageCalls = append(e.PageCalls, offset)
	var in []malfunction.Exception
	for _, ex := range e.Items {
		if ex.WarehouseID != warehouseID {
			continue
		}
		at := ex.CreatedAt
		if ex.ErrorStartAt != nil {
			at = *ex.ErrorStartAt
		}
		if !at.Before(from) && at.Before(to) {
			in = append(in, ex)
		}
	}
	return page(in, offset, limit), nil
}

func (e *Exceptions) CountByRepairStatus(_ context.Context, warehouseID string) (map[malfunction.RepairStatus]int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[malfunction.RepairStatus]int)
	for _, ex := range e.Items {
		if ex.WarehouseID == warehouseID {
			out[ex.RepairStatus]++
		}
	}
	return out, nil
}

// ========================================
// PARTS
// ========================================

type Parts struct {
	mu    sync.Mutex
	Items map[string]part.Part
	Swaps []part.Swap
}

func NewParts(ps ...part.Part) *Parts {
	p := &Parts{Items: make(map[string]part.Part)}
	for _, pt := range ps {
		p.Items[pt.ID] = pt
	}
	return p
}

func (p *Parts) GetByID(_ context.Context, id string, warehouseID string) (part.Part, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pt, ok := p.Items[id]
	if !ok || pt.WarehouseID != warehouseID {
		return part.Part{}, part.ErrPartNotFound
	}
	return pt, nil
}

func (p *Parts) List(_ context.Context, warehouseID string) ([]part.Part, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []part.Part
	for _, pt := range p.Items {
		if pt.WarehouseID == warehouseID {
			out = append(out, pt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out, nil
}

func (p *Parts) AdjustStock(_ context.Context, id string, warehouseID string, delta int) (part.Part, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pt, ok := p.Items[id]
	if !ok || pt.WarehouseID != warehouseID {
		return part.Part{}, part.ErrPartNotFound
	}
	if pt.Stock+delta < 0 {
		return part.Part{}, part.ErrInsufficientStock
	}
	pt.Stock += delta
	p.Items[id] = pt
	return pt, nil
}

func (p *Parts) CreateSwap(_ context.Context, s part.Swap) (part.Swap, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	p.Swaps = append(p.Swaps, s)
	return s, nil
}

func (p *Parts) ListSwapsPage(_ context.Context, warehouseID string, from, to time.Time, offset, limit int) ([]part.Swap, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var in []part.Swap
	for _, s := range p.Swaps {
		if s.WarehouseID == warehouseID && !s.SwappedAt.Before(from) && s.SwappedAt.Before(to) {
			in = append(in, s)
		}
	}
	return page(in, offset, limit), nil
}

// ========================================
// SCORES
// ========================================

type Scores struct {
	mu    sync.Mutex
	Items map[string]scoreboard.Score
}

func NewScores() *Scores {
	return &Scores{Items: make(map[string]scoreboard.Score)}
}

func scoreKey(warehouseID, month, employeeID string) string {
	return fmt.Sprintf("%s|%s|%s", warehouseID, month, employeeID)
}

func (s *Scores) ApplyIncrements(_ context.Context, warehouseID string, month string, incs []scoreboard.Increment) ([]scoreboard.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []scoreboard.Score
	for _, inc := range incs {
		k := scoreKey(warehouseID, month, inc.EmployeeID)
		sc := s.Items[k]
		sc.WarehouseID, sc.Month, sc.EmployeeID = warehouseID, month, inc.EmployeeID
		sc.Points += inc.Points
		sc.Events += inc.Events
		s.Items[k] = sc
		out = append(out, sc)
	}
	return out, nil
}

func (s *Scores) List(_ context.Context, warehouseID string, month string) ([]scoreboard.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []scoreboard.Score
	for _, sc := range s.Items {
		if sc.WarehouseID == warehouseID && sc.Month == month {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// Get returns one score, zero when absent.
func (s *Scores) Get(warehouseID, month, employeeID string) scoreboard.Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Items[scoreKey(warehouseID, month, employeeID)]
}

// ========================================
// INFRASTRUCTURE
// ========================================

// Tx runs fn directly and counts calls.
type Tx struct {
	Calls int
}

func (t *Tx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

// Events records published events.
type Events struct {
	mu     sync.Mutex
	Events []sse.Event
}

func (e *Events) Publish(warehouseID string, ev sse.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev.WarehouseID = warehouseID
	e.Events = append(e.Events, ev)
}

func (e *Events) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.Events {
		out = append(out, ev.Event)
	}
	return out
}

// Cache is a map-backed cache.Cache.
type Cache struct {
	mu    sync.Mutex
	Items map[string][]byte
	Sets  int
}

func NewCache() *Cache {
	return &Cache{Items: make(map[string][]byte)}
}

func (c *Cache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Items[key] = append([]byte(nil), value...)
	c.Sets++
	return nil
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Items[key]
	return v, ok, nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Items, key)
	return nil
}

func (c *Cache) Ping(context.Context) error {
	return nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return append([]T(nil), items[offset:end]...)
}
