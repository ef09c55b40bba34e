package businessflow

import (
	"context"
	"strings"
	"sync"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// In-memory repository fakes. They keep just enough behavior for the flows
// under test: conditional transitions, pending lookups and id assignment.

var (
	_ repository.PhoneNumberRepository           = (*fakePhoneNumberRepo)(nil)
	_ repository.PhoneNumberAssignmentRepository = (*fakeAssignmentRepo)(nil)
	_ repository.PhoneNumberBillingRepository    = (*fakeBillingRepo)(nil)
	_ repository.RateRepository                  = (*fakeRateRepo)(nil)
	_ repository.RateDeckRepository              = (*fakeRateDeckRepo)(nil)
	_ repository.UserRepository                  = (*fakeUserRepo)(nil)
	_ NotificationDispatcher                     = (*fakeDispatcher)(nil)
	_ RateCache                                  = (*fakeRateCache)(nil)
)

type fakePhoneNumberRepo struct {
	mu      sync.Mutex
	nextID  uint
	numbers map[uint]*models.PhoneNumber

	claimErr   error
	releaseErr error
}

func newFakePhoneNumberRepo() *fakePhoneNumberRepo {
	return &fakePhoneNumberRepo{numbers: make(map[uint]*models.PhoneNumber)}
}

func (r *fakePhoneNumberRepo) add(n *models.PhoneNumber) *models.PhoneNumber {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == 0 {
		r.nextID++
		n.ID = r.nextID
	} else if n.ID > r.nextID {
		r.nextID = n.ID
	}
	r.numbers[n.ID] = n
	return n
}

func (r *fakePhoneNumberRepo) ByID(ctx context.Context, id uint) (*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.numbers[id]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, nil
}

func (r *fakePhoneNumberRepo) matches(n *models.PhoneNumber, filter models.PhoneNumberFilter) bool {
	if filter.Status != nil && n.Status != *filter.Status {
		return false
	}
	if filter.BackorderOnly != nil && utils.IsTrue(n.BackorderOnly) != *filter.BackorderOnly {
		return false
	}
	if filter.Country != nil && n.Country != *filter.Country {
		return false
	}
	if filter.NumberType != nil && n.NumberType != *filter.NumberType {
		return false
	}
	if filter.Search != nil && !strings.Contains(n.Number, *filter.Search) {
		return false
	}
	if filter.UUID != nil && n.UUID != *filter.UUID {
		return false
	}
	return true
}

func (r *fakePhoneNumberRepo) ByFilter(ctx context.Context, filter models.PhoneNumberFilter, orderBy string, limit, offset int) ([]*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PhoneNumber
	for id := uint(1); id <= r.nextID; id++ {
		n, ok := r.numbers[id]
		if !ok || !r.matches(n, filter) {
			continue
		}
		copied := *n
		out = append(out, &copied)
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePhoneNumberRepo) Save(ctx context.Context, entity *models.PhoneNumber) error {
	r.add(entity)
	return nil
}

func (r *fakePhoneNumberRepo) SaveBatch(ctx context.Context, entities []*models.PhoneNumber) error {
	for _, e := range entities {
		r.add(e)
	}
	return nil
}

func (r *fakePhoneNumberRepo) Count(ctx context.Context, filter models.PhoneNumberFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.numbers {
		if r.matches(n, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakePhoneNumberRepo) Exists(ctx context.Context, filter models.PhoneNumberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakePhoneNumberRepo) ByUUID(ctx context.Context, raw string) (*models.PhoneNumber, error) {
	parsed, err := utils.ParseUUID(raw)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.numbers {
		if n.UUID == parsed {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePhoneNumberRepo) ByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.numbers {
		if n.Number == number {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePhoneNumberRepo) ClaimForAssignment(ctx context.Context, id uint, claim repository.PhoneNumberClaim) (bool, error) {
	if r.claimErr != nil {
		return false, r.claimErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.numbers[id]
	if !ok || n.Status != models.PhoneNumberStatusAvailable {
		return false, nil
	}
	n.Status = models.PhoneNumberStatusAssigned
	n.AssignedTo = &claim.AssignedTo
	n.AssignedBy = &claim.AssignedBy
	assignedAt := claim.AssignedAt
	n.AssignedAt = &assignedAt
	n.UnassignedAt = nil
	n.UnassignedBy = nil
	n.UnassignedReason = nil
	n.MonthlyRate = claim.MonthlyRate
	n.SetupFee = claim.SetupFee
	n.Currency = claim.Currency
	n.BillingCycle = claim.BillingCycle
	next := claim.NextBillingDate
	n.NextBillingDate = &next
	return true, nil
}

func (r *fakePhoneNumberRepo) ReleaseAssignment(ctx context.Context, id uint, release repository.PhoneNumberRelease) (bool, error) {
	if r.releaseErr != nil {
		return false, r.releaseErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.numbers[id]
	if !ok || n.Status != models.PhoneNumberStatusAssigned {
		return false, nil
	}
	n.Status = models.PhoneNumberStatusAvailable
	n.AssignedTo = nil
	n.AssignedBy = nil
	n.AssignedAt = nil
	n.NextBillingDate = nil
	n.UnassignedAt = release.UnassignedAt
	n.UnassignedBy = release.UnassignedBy
	n.UnassignedReason = release.UnassignedReason
	return true, nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	nextID      uint
	assignments map[uint]*models.PhoneNumberAssignment

	saveErr error
	endErr  error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[uint]*models.PhoneNumberAssignment)}
}

func (r *fakeAssignmentRepo) add(a *models.PhoneNumberAssignment) {
	if a.ID == 0 {
		r.nextID++
		a.ID = r.nextID
	} else if a.ID > r.nextID {
		r.nextID = a.ID
	}
	r.assignments[a.ID] = a
}

func (r *fakeAssignmentRepo) ByID(ctx context.Context, id uint) (*models.PhoneNumberAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) ByFilter(ctx context.Context, filter models.PhoneNumberAssignmentFilter, orderBy string, limit, offset int) ([]*models.PhoneNumberAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PhoneNumberAssignment
	for id := uint(1); id <= r.nextID; id++ {
		a, ok := r.assignments[id]
		if !ok {
			continue
		}
		if filter.PhoneNumberID != nil && a.PhoneNumberID != *filter.PhoneNumberID {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) Save(ctx context.Context, entity *models.PhoneNumberAssignment) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(entity)
	return nil
}

func (r *fakeAssignmentRepo) SaveBatch(ctx context.Context, entities []*models.PhoneNumberAssignment) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeAssignmentRepo) Count(ctx context.Context, filter models.PhoneNumberAssignmentFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeAssignmentRepo) Exists(ctx context.Context, filter models.PhoneNumberAssignmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakeAssignmentRepo) ByUUID(ctx context.Context, raw string) (*models.PhoneNumberAssignment, error) {
	parsed, err := utils.ParseUUID(raw)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.assignments {
		if a.UUID == parsed {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) ActiveByPhoneNumber(ctx context.Context, phoneNumberID uint) (*models.PhoneNumberAssignment, error) {
	status := models.AssignmentStatusActive
	rows, err := r.ByFilter(ctx, models.PhoneNumberAssignmentFilter{PhoneNumberID: &phoneNumberID, Status: &status}, "", 0, 0)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *fakeAssignmentRepo) ActiveByPhoneNumberAndUser(ctx context.Context, phoneNumberID, userID uint) (*models.PhoneNumberAssignment, error) {
	status := models.AssignmentStatusActive
	rows, err := r.ByFilter(ctx, models.PhoneNumberAssignmentFilter{PhoneNumberID: &phoneNumberID, UserID: &userID, Status: &status}, "", 0, 0)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *fakeAssignmentRepo) CountActiveByPhoneNumber(ctx context.Context, phoneNumberID uint) (int64, error) {
	status := models.AssignmentStatusActive
	return r.Count(ctx, models.PhoneNumberAssignmentFilter{PhoneNumberID: &phoneNumberID, Status: &status})
}

func (r *fakeAssignmentRepo) End(ctx context.Context, id uint, end repository.AssignmentEnd) error {
	if r.endErr != nil {
		return r.endErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil
	}
	a.Status = models.AssignmentStatusEnded
	endDate := end.BillingEndDate
	a.BillingEndDate = &endDate
	unassignedAt := end.UnassignedAt
	a.UnassignedAt = &unassignedAt
	unassignedBy := end.UnassignedBy
	a.UnassignedBy = &unassignedBy
	a.UnassignedReason = end.UnassignedReason
	return nil
}

type fakeBillingRepo struct {
	mu      sync.Mutex
	nextID  uint
	entries map[uint]*models.PhoneNumberBilling

	saveErr error
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{entries: make(map[uint]*models.PhoneNumberBilling)}
}

func (r *fakeBillingRepo) add(e *models.PhoneNumberBilling) {
	if e.ID == 0 {
		r.nextID++
		e.ID = r.nextID
	} else if e.ID > r.nextID {
		r.nextID = e.ID
	}
	r.entries[e.ID] = e
}

func (r *fakeBillingRepo) ByID(ctx context.Context, id uint) (*models.PhoneNumberBilling, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeBillingRepo) ByFilter(ctx context.Context, filter models.PhoneNumberBillingFilter, orderBy string, limit, offset int) ([]*models.PhoneNumberBilling, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PhoneNumberBilling
	for id := uint(1); id <= r.nextID; id++ {
		e, ok := r.entries[id]
		if !ok {
			continue
		}
		if filter.PhoneNumberID != nil && e.PhoneNumberID != *filter.PhoneNumberID {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		if filter.AssignmentID != nil && (e.AssignmentID == nil || *e.AssignmentID != *filter.AssignmentID) {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.TransactionType != nil && e.TransactionType != *filter.TransactionType {
			continue
		}
		if filter.CreatedAfter != nil && e.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && e.CreatedAt.After(*filter.CreatedBefore) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBillingRepo) Save(ctx context.Context, entity *models.PhoneNumberBilling) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(entity)
	return nil
}

func (r *fakeBillingRepo) SaveBatch(ctx context.Context, entities []*models.PhoneNumberBilling) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeBillingRepo) Count(ctx context.Context, filter models.PhoneNumberBillingFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeBillingRepo) Exists(ctx context.Context, filter models.PhoneNumberBillingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakeBillingRepo) PendingByAssignment(ctx context.Context, assignmentID uint) ([]*models.PhoneNumberBilling, error) {
	status := models.BillingStatusPending
	return r.ByFilter(ctx, models.PhoneNumberBillingFilter{AssignmentID: &assignmentID, Status: &status}, "", 0, 0)
}

func (r *fakeBillingRepo) PendingByNumberAndUser(ctx context.Context, phoneNumberID, userID uint) ([]*models.PhoneNumberBilling, error) {
	status := models.BillingStatusPending
	return r.ByFilter(ctx, models.PhoneNumberBillingFilter{PhoneNumberID: &phoneNumberID, UserID: &userID, Status: &status}, "", 0, 0)
}

func (r *fakeBillingRepo) CancelPending(ctx context.Context, ids []uint, reason string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cancelled int64
	for _, id := range ids {
		e, ok := r.entries[id]
		if !ok || e.Status != models.BillingStatusPending {
			continue
		}
		e.Status = models.BillingStatusCancelled
		reasonCopy := reason
		e.FailureReason = &reasonCopy
		cancelled++
	}
	return cancelled, nil
}

type fakeRateRepo struct {
	mu    sync.Mutex
	rates map[uint][]*models.Rate

	byDeckErr error
	loads     int
}

func newFakeRateRepo() *fakeRateRepo {
	return &fakeRateRepo{rates: make(map[uint][]*models.Rate)}
}

func (r *fakeRateRepo) ByID(ctx context.Context, id uint) (*models.Rate, error) {
	return nil, nil
}

func (r *fakeRateRepo) ByFilter(ctx context.Context, filter models.RateFilter, orderBy string, limit, offset int) ([]*models.Rate, error) {
	if filter.RateDeckID != nil {
		return r.ByDeck(ctx, *filter.RateDeckID)
	}
	return nil, nil
}

func (r *fakeRateRepo) Save(ctx context.Context, entity *models.Rate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[entity.RateDeckID] = append(r.rates[entity.RateDeckID], entity)
	return nil
}

func (r *fakeRateRepo) SaveBatch(ctx context.Context, entities []*models.Rate) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRateRepo) Count(ctx context.Context, filter models.RateFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeRateRepo) Exists(ctx context.Context, filter models.RateFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func (r *fakeRateRepo) ByDeck(ctx context.Context, rateDeckID uint) ([]*models.Rate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads++
	if r.byDeckErr != nil {
		return nil, r.byDeckErr
	}
	return r.rates[rateDeckID], nil
}

type fakeRateDeckRepo struct {
	mu    sync.Mutex
	decks map[uint]*models.RateDeck
}

func newFakeRateDeckRepo() *fakeRateDeckRepo {
	return &fakeRateDeckRepo{decks: make(map[uint]*models.RateDeck)}
}

func (r *fakeRateDeckRepo) ByID(ctx context.Context, id uint) (*models.RateDeck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.decks[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRateDeckRepo) ByFilter(ctx context.Context, filter models.RateDeckFilter, orderBy string, limit, offset int) ([]*models.RateDeck, error) {
	return nil, nil
}

func (r *fakeRateDeckRepo) Save(ctx context.Context, entity *models.RateDeck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decks[entity.ID] = entity
	return nil
}

func (r *fakeRateDeckRepo) SaveBatch(ctx context.Context, entities []*models.RateDeck) error {
	for _, e := range entities {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRateDeckRepo) Count(ctx context.Context, filter models.RateDeckFilter) (int64, error) {
	return 0, nil
}

func (r *fakeRateDeckRepo) Exists(ctx context.Context, filter models.RateDeckFilter) (bool, error) {
	return false, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	} else if u.ID > r.nextID {
		r.nextID = u.ID
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) Save(ctx context.Context, entity *models.User) error {
	r.add(entity)
	return nil
}

func (r *fakeUserRepo) SaveBatch(ctx context.Context, entities []*models.User) error {
	for _, e := range entities {
		r.add(e)
	}
	return nil
}

func (r *fakeUserRepo) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	return false, nil
}

func (r *fakeUserRepo) ByUUID(ctx context.Context, raw string) (*models.User, error) {
	parsed, err := utils.ParseUUID(raw)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UUID == parsed {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeDispatcher struct {
	mu          sync.Mutex
	assigned    int
	unassigned  int
	bulk        int
	lastSummary *dto.BulkSummary
}

func (d *fakeDispatcher) NotifyNumberAssigned(ctx context.Context, user *models.User, number *models.PhoneNumber, assignment *models.PhoneNumberAssignment) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.assigned++
	return nil
}

func (d *fakeDispatcher) NotifyNumberUnassigned(ctx context.Context, user *models.User, number *models.PhoneNumber, reason *string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unassigned++
	return nil
}

func (d *fakeDispatcher) NotifyBulkPurchaseSummary(ctx context.Context, user *models.User, summary *dto.BulkSummary) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bulk++
	copied := *summary
	d.lastSummary = &copied
	return nil
}

func (d *fakeDispatcher) counts() (assigned, unassigned, bulk int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.assigned, d.unassigned, d.bulk
}

type fakeRateCache struct {
	mu    sync.Mutex
	store map[uint][]*models.Rate
	hits  int
	sets  int
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{store: make(map[uint][]*models.Rate)}
}

func (c *fakeRateCache) GetRates(ctx context.Context, rateDeckID uint) ([]*models.Rate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rates, ok := c.store[rateDeckID]
	if ok {
		c.hits++
	}
	return rates, ok
}

func (c *fakeRateCache) SetRates(ctx context.Context, rateDeckID uint, rates []*models.Rate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.store[rateDeckID] = rates
}
