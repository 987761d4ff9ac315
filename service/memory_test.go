package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"charityfund/events"
	"charityfund/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memoryState is the committed data of a memoryStore
type memoryState struct {
	needs         map[int64]*models.Need
	beneficiaries map[int64]*models.Beneficiary
	donations     map[int64]*models.Donation
	allocations   []*models.Allocation
	sweepRuns     []*models.SweepRun
	nextID        int64
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		needs:         make(map[int64]*models.Need, len(s.needs)),
		beneficiaries: make(map[int64]*models.Beneficiary, len(s.beneficiaries)),
		donations:     make(map[int64]*models.Donation, len(s.donations)),
		allocations:   append([]*models.Allocation(nil), s.allocations...),
		sweepRuns:     append([]*models.SweepRun(nil), s.sweepRuns...),
		nextID:        s.nextID,
	}
	for id, n := range s.needs {
		cp := *n
		c.needs[id] = &cp
	}
	for id, b := range s.beneficiaries {
		cp := *b
		c.beneficiaries[id] = &cp
	}
	for id, d := range s.donations {
		cp := *d
		c.donations[id] = &cp
	}
	return c
}

func (s *memoryState) id() int64 {
	s.nextID++
	return s.nextID
}

// memoryStore is an in-memory stand-in for the database. Units of work copy the
// committed state on Begin and replace it on Commit, so a rolled back unit of work
// leaves no trace.
type memoryStore struct {
	mu        sync.Mutex
	state     *memoryState
	published []events.Event
	epoch     time.Time

	// raiseConflicts makes the next n ApplyRaise calls fail with ErrConcurrencyConflict
	raiseConflicts int
	// recordErrors makes Record fail for the given donation
	recordErrors   map[int64]error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		state: &memoryState{
			needs:         make(map[int64]*models.Need),
			beneficiaries: make(map[int64]*models.Beneficiary),
			donations:     make(map[int64]*models.Donation),
		},
		epoch:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		recordErrors: make(map[int64]error),
	}
}

func (s *memoryStore) Create() UnitOfWork {
	return &memoryUnitOfWork{store: s}
}

func (s *memoryStore) addNeed(title string, needed, raised string) *models.Need {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := &models.Need{
		ID:           s.state.id(),
		Title:        title,
		Section:      models.NeedSectionOther,
		AmountNeeded: decimal.RequireFromString(needed),
		AmountRaised: decimal.RequireFromString(raised),
	}
	n.Fulfilled = n.IsFulfilled()
	n.CreatedAt = s.epoch.Add(time.Duration(n.ID) * time.Second)
	s.state.needs[n.ID] = n
	return n
}

func (s *memoryStore) addBeneficiary(name string, fulfilled bool) *models.Beneficiary {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &models.Beneficiary{ID: s.state.id(), Name: name, NeedFulfilled: fulfilled}
	s.state.beneficiaries[b.ID] = b
	return b
}

func (s *memoryStore) setPriority(beneficiaryID int64, priority int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.beneficiaries[beneficiaryID].Priority = priority
}

func (s *memoryStore) addDonation(donorRef, amount string) *models.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &models.Donation{
		ID:       s.state.id(),
		DonorRef: donorRef,
		Amount:   decimal.RequireFromString(amount),
		Status:   models.DonationStatusUnallocated,
	}
	d.CreatedAt = s.epoch.Add(time.Duration(d.ID) * time.Second)
	s.state.donations[d.ID] = d
	return d
}

func (s *memoryStore) need(id int64) *models.Need {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.state.needs[id]
	return &cp
}

func (s *memoryStore) donation(id int64) *models.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.state.donations[id]
	return &cp
}

func (s *memoryStore) ledger() []*models.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Allocation(nil), s.state.allocations...)
}

func (s *memoryStore) sweepRuns() []*models.SweepRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.SweepRun(nil), s.state.sweepRuns...)
}

func (s *memoryStore) events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.published...)
}

// allNeeds returns every committed need ordered by id
func (s *memoryStore) allNeeds() []*models.Need {
	s.mu.Lock()
	defer s.mu.Unlock()
	needs := make([]*models.Need, 0, len(s.state.needs))
	for _, n := range s.state.needs {
		cp := *n
		needs = append(needs, &cp)
	}
	sort.Slice(needs, func(i, j int) bool { return needs[i].ID < needs[j].ID })
	return needs
}

// allDonations returns every committed donation ordered by id
func (s *memoryStore) allDonations() []*models.Donation {
	s.mu.Lock()
	defer s.mu.Unlock()
	donations := make([]*models.Donation, 0, len(s.state.donations))
	for _, d := range s.state.donations {
		cp := *d
		donations = append(donations, &cp)
	}
	sort.Slice(donations, func(i, j int) bool { return donations[i].ID < donations[j].ID })
	return donations
}

type memoryUnitOfWork struct {
	store   *memoryStore
	state   *memoryState
	pending []events.Event
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.state != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.state = u.store.state.clone()
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if u.state == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.state = u.state
	u.store.published = append(u.store.published, u.pending...)
	u.state = nil
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.state = nil
	u.pending = nil
	return nil
}

func (u *memoryUnitOfWork) NeedRepository() NeedRepository               { return memoryNeeds{u} }
func (u *memoryUnitOfWork) BeneficiaryRepository() BeneficiaryRepository { return memoryBeneficiaries{u} }
func (u *memoryUnitOfWork) DonationRepository() DonationRepository       { return memoryDonations{u} }
func (u *memoryUnitOfWork) AllocationRepository() AllocationRepository   { return memoryLedger{u} }
func (u *memoryUnitOfWork) SweepRunRepository() SweepRunRepository       { return memorySweepRuns{u} }
func (u *memoryUnitOfWork) ReportRepository() ReportRepository           { return nil }
func (u *memoryUnitOfWork) EventBus() EventPublisher                     { return u }

func (u *memoryUnitOfWork) Publish(event events.Event) {
	u.pending = append(u.pending, event)
}

type memoryNeeds struct{ u *memoryUnitOfWork }

func (r memoryNeeds) Create(ctx context.Context, need *models.Need) error {
	need.ID = r.u.state.id()
	need.AmountRaised = models.ZeroMoney
	need.Fulfilled = false
	cp := *need
	r.u.state.needs[need.ID] = &cp
	return nil
}

func (r memoryNeeds) GetByID(ctx context.Context, id int64) (*models.Need, error) {
	n, ok := r.u.state.needs[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r memoryNeeds) GetAll(ctx context.Context) ([]*models.Need, error) {
	var needs []*models.Need
	for _, n := range r.u.state.needs {
		cp := *n
		needs = append(needs, &cp)
	}
	sort.Slice(needs, func(i, j int) bool { return needs[i].ID < needs[j].ID })
	return needs, nil
}

func (r memoryNeeds) ListOpen(ctx context.Context, ordering models.NeedOrdering) ([]*models.Need, error) {
	var needs []*models.Need
	for _, n := range r.u.state.needs {
		if n.Fulfilled {
			continue
		}
		cp := *n
		needs = append(needs, &cp)
	}
	sort.Slice(needs, func(i, j int) bool {
		gi, gj := needs[i].Remaining(), needs[j].Remaining()
		if !gi.Equal(gj) {
			if ordering == models.NeedOrderSmallestRemaining {
				return gi.LessThan(gj)
			}
			return gi.GreaterThan(gj)
		}
		return needs[i].ID < needs[j].ID
	})
	return needs, nil
}

func (r memoryNeeds) ApplyRaise(ctx context.Context, need *models.Need, amount decimal.Decimal) error {
	if amount.Sign() <= 0 || amount.GreaterThan(need.Remaining()) {
		return ErrOverAllocation
	}
	if r.u.store.raiseConflicts > 0 {
		r.u.store.raiseConflicts--
		return ErrConcurrencyConflict
	}

	stored, ok := r.u.state.needs[need.ID]
	if !ok {
		return ErrNotFound
	}
	if !stored.AmountRaised.Equal(need.AmountRaised) {
		return ErrConcurrencyConflict
	}

	stored.AmountRaised = stored.AmountRaised.Add(amount)
	stored.Fulfilled = stored.IsFulfilled()
	need.AmountRaised = stored.AmountRaised
	need.Fulfilled = stored.Fulfilled
	return nil
}

type memoryBeneficiaries struct{ u *memoryUnitOfWork }

func (r memoryBeneficiaries) Create(ctx context.Context, beneficiary *models.Beneficiary) error {
	beneficiary.ID = r.u.state.id()
	cp := *beneficiary
	r.u.state.beneficiaries[beneficiary.ID] = &cp
	return nil
}

func (r memoryBeneficiaries) GetByID(ctx context.Context, id int64) (*models.Beneficiary, error) {
	b, ok := r.u.state.beneficiaries[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r memoryBeneficiaries) ListEligible(ctx context.Context, policy models.BeneficiaryPolicy) ([]*models.Beneficiary, error) {
	var eligible []*models.Beneficiary
	for _, b := range r.u.state.beneficiaries {
		if policy == models.BeneficiaryPolicyUnfulfilled && b.NeedFulfilled {
			continue
		}
		cp := *b
		eligible = append(eligible, &cp)
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority > eligible[j].Priority
		}
		return eligible[i].ID < eligible[j].ID
	})
	return eligible, nil
}

type memoryDonations struct{ u *memoryUnitOfWork }

func (r memoryDonations) Create(ctx context.Context, donation *models.Donation) error {
	donation.ID = r.u.state.id()
	donation.CreatedAt = r.u.store.epoch.Add(time.Duration(donation.ID) * time.Second)
	cp := *donation
	r.u.state.donations[donation.ID] = &cp
	return nil
}

func (r memoryDonations) GetByID(ctx context.Context, id int64) (*models.Donation, error) {
	d, ok := r.u.state.donations[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r memoryDonations) GetForUpdate(ctx context.Context, id int64) (*models.Donation, error) {
	return r.GetByID(ctx, id)
}

func (r memoryDonations) ListUnallocated(ctx context.Context) ([]*models.Donation, error) {
	var donations []*models.Donation
	for _, d := range r.u.state.donations {
		if d.Status == models.DonationStatusFullyAllocated {
			continue
		}
		cp := *d
		donations = append(donations, &cp)
	}
	sort.Slice(donations, func(i, j int) bool {
		if !donations[i].CreatedAt.Equal(donations[j].CreatedAt) {
			return donations[i].CreatedAt.Before(donations[j].CreatedAt)
		}
		return donations[i].ID < donations[j].ID
	})
	return donations, nil
}

func (r memoryDonations) UpdateStatus(ctx context.Context, id int64, status models.DonationStatus) error {
	d, ok := r.u.state.donations[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	return nil
}

type memoryLedger struct{ u *memoryUnitOfWork }

func (r memoryLedger) Record(ctx context.Context, allocation *models.Allocation) error {
	if err, ok := r.u.store.recordErrors[allocation.DonationID]; ok {
		return err
	}
	if allocation.Amount.Sign() <= 0 || allocation.TargetType() == "" {
		return ErrInvalidAllocation
	}
	donation, ok := r.u.state.donations[allocation.DonationID]
	if !ok {
		return ErrInvalidAllocation
	}
	sum, _ := r.SumByDonation(ctx, allocation.DonationID)
	if sum.Add(allocation.Amount).GreaterThan(donation.Amount) {
		return ErrInvalidAllocation
	}

	allocation.ID = r.u.state.id()
	allocation.CreatedAt = r.u.store.epoch
	cp := *allocation
	r.u.state.allocations = append(r.u.state.allocations, &cp)
	return nil
}

func (r memoryLedger) SumByDonation(ctx context.Context, donationID int64) (decimal.Decimal, error) {
	total := models.ZeroMoney
	for _, a := range r.u.state.allocations {
		if a.DonationID == donationID {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

func (r memoryLedger) SumByNeed(ctx context.Context, needID int64) (decimal.Decimal, error) {
	total := models.ZeroMoney
	for _, a := range r.u.state.allocations {
		if a.NeedID != nil && *a.NeedID == needID {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

func (r memoryLedger) ListByDonation(ctx context.Context, donationID int64) ([]*models.Allocation, error) {
	var allocations []*models.Allocation
	for _, a := range r.u.state.allocations {
		if a.DonationID == donationID {
			cp := *a
			allocations = append(allocations, &cp)
		}
	}
	return allocations, nil
}

type memorySweepRuns struct{ u *memoryUnitOfWork }

func (r memorySweepRuns) Create(ctx context.Context, run *models.SweepRun) error {
	run.ID = r.u.state.id()
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}
	cp := *run
	r.u.state.sweepRuns = append(r.u.state.sweepRuns, &cp)
	return nil
}

func (r memorySweepRuns) GetByRunID(ctx context.Context, runID uuid.UUID) (*models.SweepRun, error) {
	for _, run := range r.u.state.sweepRuns {
		if run.RunID == runID {
			cp := *run
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memorySweepRuns) GetLatest(ctx context.Context) (*models.SweepRun, error) {
	if len(r.u.state.sweepRuns) == 0 {
		return nil, nil
	}
	cp := *r.u.state.sweepRuns[len(r.u.state.sweepRuns)-1]
	return &cp, nil
}
