package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/domain/entity"
)

// In-memory repository fakes. Mutex-guarded so the concurrency tests
// can hammer them from multiple goroutines.

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[string]*entity.Vehicle

	// getHook, when set, runs at the start of GetByID before the store
	// mutex is taken. Lets tests pause a caller mid read-modify-write.
	getHook func(id string)
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[string]*entity.Vehicle)}
}

func (r *fakeVehicleRepo) Create(_ context.Context, v *entity.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.vehicles[v.ID] = &cp
	return nil
}

func (r *fakeVehicleRepo) GetByID(_ context.Context, id string) (*entity.Vehicle, error) {
	if r.getHook != nil {
		r.getHook(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: vehicle %s", entity.ErrNotFound, id)
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVehicleRepo) List(_ context.Context, organisationID string) ([]*entity.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Vehicle
	for _, v := range r.vehicles {
		if organisationID == "" || v.OrganisationID == organisationID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *entity.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[v.ID]; !ok {
		return fmt.Errorf("%w: vehicle %s", entity.ErrNotFound, v.ID)
	}
	cp := *v
	r.vehicles[v.ID] = &cp
	return nil
}

func (r *fakeVehicleRepo) GetByCurrentDriver(_ context.Context, driverID string) ([]*entity.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Vehicle
	for _, v := range r.vehicles {
		if v.CurrentDriverID == driverID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[string]*entity.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[string]*entity.Driver)}
}

func (r *fakeDriverRepo) add(d *entity.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.ID] = d
}

func (r *fakeDriverRepo) GetByID(_ context.Context, id string) (*entity.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return nil, fmt.Errorf("%w: driver %s", entity.ErrNotFound, id)
	}
	return d, nil
}

func (r *fakeDriverRepo) List(_ context.Context, _ string) ([]*entity.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Driver
	for _, d := range r.drivers {
		out = append(out, d)
	}
	return out, nil
}

type fakeTourRepo struct {
	mu    sync.Mutex
	tours map[string]*entity.Tour
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{tours: make(map[string]*entity.Tour)}
}

func (r *fakeTourRepo) Create(_ context.Context, t *entity.Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tours[t.ID] = &cp
	return nil
}

func (r *fakeTourRepo) GetByID(_ context.Context, id string) (*entity.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tours[id]
	if !ok {
		return nil, fmt.Errorf("%w: tour %s", entity.ErrNotFound, id)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTourRepo) List(_ context.Context, status entity.TourStatus) ([]*entity.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Tour
	for _, t := range r.tours {
		if status == "" || t.Status == status {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTourRepo) Update(_ context.Context, t *entity.Tour) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tours[t.ID]; !ok {
		return fmt.Errorf("%w: tour %s", entity.ErrNotFound, t.ID)
	}
	cp := *t
	r.tours[t.ID] = &cp
	return nil
}

func (r *fakeTourRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tours[id]; !ok {
		return fmt.Errorf("%w: tour %s", entity.ErrNotFound, id)
	}
	delete(r.tours, id)
	return nil
}

func (r *fakeTourRepo) ListByVehicle(_ context.Context, vehicleID string) ([]*entity.Tour, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Tour
	for _, t := range r.tours {
		if t.VehicleID == vehicleID && t.Status != entity.TourCancelled {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeFloatRepo struct {
	mu     sync.Mutex
	floats map[string]*entity.Float
}

func newFakeFloatRepo() *fakeFloatRepo {
	return &fakeFloatRepo{floats: make(map[string]*entity.Float)}
}

func (r *fakeFloatRepo) Create(_ context.Context, f *entity.Float) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *f
	r.floats[f.ID] = &cp
	return nil
}

func (r *fakeFloatRepo) GetByID(_ context.Context, id string) (*entity.Float, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.floats[id]
	if !ok {
		return nil, fmt.Errorf("%w: float %s", entity.ErrNotFound, id)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFloatRepo) List(_ context.Context) ([]*entity.Float, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Float
	for _, f := range r.floats {
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeFloatRepo) Update(_ context.Context, f *entity.Float) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.floats[f.ID]; !ok {
		return fmt.Errorf("%w: float %s", entity.ErrNotFound, f.ID)
	}
	cp := *f
	r.floats[f.ID] = &cp
	return nil
}

func (r *fakeFloatRepo) GetOpenByTour(_ context.Context, tourID string) (*entity.Float, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.floats {
		if f.TourID == tourID && f.Status == entity.FloatOpen {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeFloatRepo) ListOpenByDriver(_ context.Context, driverID string) ([]*entity.Float, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Float
	for _, f := range r.floats {
		if f.DriverID == driverID && f.Status == entity.FloatOpen {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeExpenseRepo struct {
	mu       sync.Mutex
	expenses map[string]*entity.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{expenses: make(map[string]*entity.Expense)}
}

func (r *fakeExpenseRepo) Create(_ context.Context, e *entity.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *fakeExpenseRepo) GetByID(_ context.Context, id string) (*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, fmt.Errorf("%w: expense %s", entity.ErrNotFound, id)
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExpenseRepo) List(_ context.Context) ([]*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Expense
	for _, e := range r.expenses {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeExpenseRepo) ListByFloat(_ context.Context, floatID string) ([]*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Expense
	for _, e := range r.expenses {
		if e.FloatID == floatID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeExpenseRepo) Update(_ context.Context, e *entity.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.expenses[e.ID]; !ok {
		return fmt.Errorf("%w: expense %s", entity.ErrNotFound, e.ID)
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *fakeExpenseRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.expenses[id]; !ok {
		return fmt.Errorf("%w: expense %s", entity.ErrNotFound, id)
	}
	delete(r.expenses, id)
	return nil
}

type fakeIssueRepo struct {
	mu     sync.Mutex
	issues map[string]*entity.Issue
}

func newFakeIssueRepo() *fakeIssueRepo {
	return &fakeIssueRepo{issues: make(map[string]*entity.Issue)}
}

func (r *fakeIssueRepo) Create(_ context.Context, i *entity.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *i
	r.issues[i.ID] = &cp
	return nil
}

func (r *fakeIssueRepo) GetByID(_ context.Context, id string) (*entity.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.issues[id]
	if !ok {
		return nil, fmt.Errorf("%w: issue %s", entity.ErrNotFound, id)
	}
	cp := *i
	return &cp, nil
}

func (r *fakeIssueRepo) List(_ context.Context) ([]*entity.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Issue
	for _, i := range r.issues {
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeIssueRepo) ListOpenByVehicle(_ context.Context, vehicleID string) ([]*entity.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Issue
	for _, i := range r.issues {
		if i.VehicleID == vehicleID && i.IsOpen() {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeIssueRepo) Update(_ context.Context, i *entity.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[i.ID]; !ok {
		return fmt.Errorf("%w: issue %s", entity.ErrNotFound, i.ID)
	}
	cp := *i
	r.issues[i.ID] = &cp
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []*entity.AssignmentRecord
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Create(_ context.Context, rec *entity.AssignmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	cp.ID = int64(len(r.records) + 1)
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeHistoryRepo) ListByVehicle(_ context.Context, vehicleID string) ([]*entity.AssignmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AssignmentRecord
	for _, rec := range r.records {
		if rec.VehicleID == vehicleID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeTxManager runs the function directly; the fakes apply each write
// immediately, which is close enough for service-level tests.
type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
