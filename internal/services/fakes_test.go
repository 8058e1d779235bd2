package services

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lajospolya/popular-vote/internal/models"
)

// fakeCitizens is an in-memory CitizenStore
type fakeCitizens struct {
	mu       sync.Mutex
	nextID   int64
	citizens map[int64]*models.Citizen
	deleted  map[int64]bool
	details  map[int64]models.CitizenPoliticalDetails
	pending  map[int64]bool
	err      error
}

func newFakeCitizens() *fakeCitizens {
	return &fakeCitizens{
		citizens: map[int64]*models.Citizen{},
		deleted:  map[int64]bool{},
		details:  map[int64]models.CitizenPoliticalDetails{},
		pending:  map[int64]bool{},
	}
}

func (f *fakeCitizens) add(authID, given, surname string, role models.Role) models.Citizen {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &models.Citizen{ID: f.nextID, GivenName: given, Surname: surname, Role: role, AuthID: authID, CreationDate: time.Now()}
	f.citizens[c.ID] = c
	return *c
}

func (f *fakeCitizens) live() []models.Citizen {
	var out []models.Citizen
	for id, c := range f.citizens {
		if !f.deleted[id] {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCitizens) List(context.Context) ([]models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live(), f.err
}

func (f *fakeCitizens) GetByID(_ context.Context, id int64) (models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Citizen{}, f.err
	}
	c, ok := f.citizens[id]
	if !ok || f.deleted[id] {
		return models.Citizen{}, models.ErrNotFound
	}
	return *c, nil
}

func (f *fakeCitizens) GetByAuthID(_ context.Context, authID string) (models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Citizen{}, f.err
	}
	for _, c := range f.live() {
		if c.AuthID == authID {
			return c, nil
		}
	}
	return models.Citizen{}, models.ErrNotFound
}

func (f *fakeCitizens) Search(_ context.Context, givenName, surname string) ([]models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Citizen
	for _, c := range f.live() {
		if (givenName == "" || c.GivenName == givenName) && (surname == "" || c.Surname == surname) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCitizens) profile(c models.Citizen) models.CitizenProfile {
	return models.CitizenProfile{Citizen: c, VerificationPending: f.pending[c.ID]}
}

func (f *fakeCitizens) Profile(ctx context.Context, id int64) (models.CitizenProfile, error) {
	c, err := f.GetByID(ctx, id)
	if err != nil {
		return models.CitizenProfile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile(c), nil
}

func (f *fakeCitizens) ProfileByAuthID(ctx context.Context, authID string) (models.CitizenProfile, error) {
	c, err := f.GetByAuthID(ctx, authID)
	if err != nil {
		return models.CitizenProfile{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile(c), nil
}

func (f *fakeCitizens) Create(ctx context.Context, c models.Citizen) (models.Citizen, error) {
	if _, err := f.GetByAuthID(ctx, c.AuthID); err == nil {
		return models.Citizen{}, models.ErrAlreadyExists
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	c.CreationDate = time.Now()
	f.citizens[c.ID] = &c
	return c, nil
}

func (f *fakeCitizens) UpdatePostalCode(_ context.Context, id, postalCodeID int64) (models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.citizens[id]
	if !ok || f.deleted[id] {
		return models.Citizen{}, models.ErrNotFound
	}
	c.PostalCodeID = &postalCodeID
	return *c, nil
}

func (f *fakeCitizens) SoftDelete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.citizens[id]; !ok || f.deleted[id] {
		return models.ErrNotFound
	}
	f.deleted[id] = true
	return nil
}

func (f *fakeCitizens) DeclarePolitician(_ context.Context, d models.CitizenPoliticalDetails) (models.CitizenPoliticalDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = d.CitizenID + 1000
	f.details[d.CitizenID] = d
	f.pending[d.CitizenID] = true
	return d, nil
}

func (f *fakeCitizens) PoliticalDetails(_ context.Context, citizenID int64) (models.CitizenPoliticalDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[citizenID]
	if !ok {
		return d, models.ErrNotFound
	}
	return d, nil
}

func (f *fakeCitizens) PendingVerifications(context.Context) ([]models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Citizen
	for _, c := range f.live() {
		if f.pending[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCitizens) PromoteToPolitician(_ context.Context, id int64) (models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.citizens[id]
	if !ok || f.deleted[id] {
		return models.Citizen{}, models.ErrNotFound
	}
	if !f.pending[id] || c.Role != models.RoleCitizen {
		return models.Citizen{}, models.ErrInvalidState
	}
	c.Role = models.RolePolitician
	delete(f.pending, id)
	return *c, nil
}

func (f *fakeCitizens) Politicians(_ context.Context, _ *int64, req models.PageRequest) (models.Page[models.Citizen], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Citizen
	for _, c := range f.live() {
		if c.Role == models.RolePolitician {
			out = append(out, c)
		}
	}
	return models.NewPage(out, int64(len(out)), req), nil
}

func (f *fakeCitizens) PartyMembers(_ context.Context, partyID int64) ([]models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Citizen
	for _, c := range f.live() {
		if d, ok := f.details[c.ID]; ok && d.PoliticalPartyID != nil && *d.PoliticalPartyID == partyID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakePolicies is an in-memory PolicyStore
type fakePolicies struct {
	mu        sync.Mutex
	nextID    int64
	policies  map[int64]models.Policy
	coAuthors map[int64][]int64
	bookmarks map[[2]int64]bool
	created   []models.NewPolicy
}

func newFakePolicies() *fakePolicies {
	return &fakePolicies{
		policies:  map[int64]models.Policy{},
		coAuthors: map[int64][]int64{},
		bookmarks: map[[2]int64]bool{},
	}
}

func (f *fakePolicies) add(publisherID int64, closeDate time.Time) models.Policy {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := models.Policy{ID: f.nextID, Description: "policy", PublisherCitizenID: publisherID, LevelOfPoliticsID: 1, CloseDate: closeDate, CreationDate: time.Now()}
	f.policies[p.ID] = p
	return p
}

func (f *fakePolicies) List(_ context.Context, viewerID int64, _ *int64, req models.PageRequest) (models.Page[models.PolicySummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PolicySummary
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.policies[id]; ok {
			out = append(out, models.PolicySummary{Policy: p, IsBookmarked: f.bookmarks[[2]int64{viewerID, id}]})
		}
	}
	return models.NewPage(out, int64(len(out)), req), nil
}

func (f *fakePolicies) Bookmarks(_ context.Context, citizenID int64, req models.PageRequest) (models.Page[models.PolicySummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PolicySummary
	for id := int64(1); id <= f.nextID; id++ {
		if p, ok := f.policies[id]; ok && f.bookmarks[[2]int64{citizenID, id}] {
			out = append(out, models.PolicySummary{Policy: p, IsBookmarked: true})
		}
	}
	return models.NewPage(out, int64(len(out)), req), nil
}

func (f *fakePolicies) ByPublisher(_ context.Context, citizenID int64, req models.PageRequest) (models.Page[models.Policy], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Policy
	for _, p := range f.policies {
		if p.PublisherCitizenID == citizenID {
			out = append(out, p)
		}
	}
	return models.NewPage(out, int64(len(out)), req), nil
}

func (f *fakePolicies) ByParty(context.Context, int64) ([]models.Policy, error) {
	return []models.Policy{}, nil
}

func (f *fakePolicies) Get(_ context.Context, id int64) (models.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.policies[id]
	if !ok {
		return p, models.ErrNotFound
	}
	return p, nil
}

func (f *fakePolicies) CoAuthors(_ context.Context, policyID int64) ([]models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Citizen
	for _, id := range f.coAuthors[policyID] {
		out = append(out, models.Citizen{ID: id})
	}
	return out, nil
}

func (f *fakePolicies) Details(ctx context.Context, id int64) (models.PolicyDetails, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return models.PolicyDetails{}, err
	}
	return models.PolicyDetails{Policy: p}, nil
}

func (f *fakePolicies) Create(_ context.Context, np models.NewPolicy) (models.Policy, []models.Citizen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, np)
	f.nextID++
	p := models.Policy{
		ID:                        f.nextID,
		Description:               np.Description,
		PublisherCitizenID:        np.PublisherCitizenID,
		LevelOfPoliticsID:         np.LevelOfPoliticsID,
		CitizenPoliticalDetailsID: np.CitizenPoliticalDetailsID,
		CloseDate:                 np.CloseDate,
		CreationDate:              time.Now(),
	}
	f.policies[p.ID] = p
	f.coAuthors[p.ID] = np.CoAuthorCitizenIDs
	coAuthors := make([]models.Citizen, 0, len(np.CoAuthorCitizenIDs))
	for _, id := range np.CoAuthorCitizenIDs {
		coAuthors = append(coAuthors, models.Citizen{ID: id})
	}
	return p, coAuthors, nil
}

func (f *fakePolicies) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.policies[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.policies, id)
	return nil
}

func (f *fakePolicies) Bookmark(_ context.Context, citizenID, policyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookmarks[[2]int64{citizenID, policyID}] = true
	return nil
}

func (f *fakePolicies) Unbookmark(_ context.Context, citizenID, policyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bookmarks, [2]int64{citizenID, policyID})
	return nil
}

func (f *fakePolicies) IsBookmarked(_ context.Context, citizenID, policyID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookmarks[[2]int64{citizenID, policyID}], nil
}

// fakeOpinions is an in-memory OpinionStore
type fakeOpinions struct {
	mu       sync.Mutex
	nextID   int64
	opinions map[int64]models.Opinion
	likes    map[[2]int64]bool
}

func newFakeOpinions() *fakeOpinions {
	return &fakeOpinions{opinions: map[int64]models.Opinion{}, likes: map[[2]int64]bool{}}
}

func (f *fakeOpinions) List(context.Context) ([]models.Opinion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Opinion
	for id := int64(1); id <= f.nextID; id++ {
		if o, ok := f.opinions[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOpinions) ByPolicy(_ context.Context, policyID int64) ([]models.OpinionDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.OpinionDetail{}
	for id := int64(1); id <= f.nextID; id++ {
		if o, ok := f.opinions[id]; ok && o.PolicyID == policyID {
			out = append(out, models.OpinionDetail{Opinion: o})
		}
	}
	return out, nil
}

func (f *fakeOpinions) Get(_ context.Context, id int64) (models.Opinion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.opinions[id]
	if !ok {
		return o, models.ErrNotFound
	}
	return o, nil
}

func (f *fakeOpinions) Create(_ context.Context, o models.Opinion) (models.Opinion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	o.CreationDate = time.Now()
	f.opinions[o.ID] = o
	return o, nil
}

func (f *fakeOpinions) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.opinions[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.opinions, id)
	return nil
}

func (f *fakeOpinions) Like(_ context.Context, citizenID, opinionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likes[[2]int64{citizenID, opinionID}] = true
	return nil
}

func (f *fakeOpinions) Unlike(_ context.Context, citizenID, opinionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.likes, [2]int64{citizenID, opinionID})
	return nil
}

func (f *fakeOpinions) LikedOpinionIDs(_ context.Context, citizenID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for k := range f.likes {
		if k[0] == citizenID {
			ids = append(ids, k[1])
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (f *fakeOpinions) LikeCounts(_ context.Context, opinionIDs []int64) (map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[int64]int64{}
	for k := range f.likes {
		if slices.Contains(opinionIDs, k[1]) {
			counts[k[1]]++
		}
	}
	return counts, nil
}

// fakeParties is an in-memory PartyStore
type fakeParties struct {
	mu      sync.Mutex
	nextID  int64
	parties map[int64]models.PoliticalParty
}

func newFakeParties() *fakeParties {
	return &fakeParties{parties: map[int64]models.PoliticalParty{}}
}

func (f *fakeParties) All(_ context.Context, filter models.PartyFilter) ([]models.PoliticalParty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PoliticalParty
	for id := f.nextID; id >= 1; id-- {
		p, ok := f.parties[id]
		if !ok {
			continue
		}
		if filter.LevelOfPoliticsID != nil && p.LevelOfPoliticsID != *filter.LevelOfPoliticsID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeParties) List(ctx context.Context, filter models.PartyFilter, req models.PageRequest) (models.Page[models.PoliticalParty], error) {
	all, _ := f.All(ctx, filter)
	start := min(int(req.Offset()), len(all))
	end := min(start+req.Size, len(all))
	return models.NewPage(all[start:end], int64(len(all)), req), nil
}

func (f *fakeParties) Get(_ context.Context, id int64) (models.PoliticalParty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.parties[id]
	if !ok {
		return p, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeParties) Create(_ context.Context, p models.PoliticalParty) (models.PoliticalParty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.parties[p.ID] = p
	return p, nil
}

func (f *fakeParties) Update(_ context.Context, p models.PoliticalParty) (models.PoliticalParty, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.parties[p.ID]; !ok {
		return models.PoliticalParty{}, models.ErrNotFound
	}
	f.parties[p.ID] = p
	return p, nil
}

func (f *fakeParties) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.parties[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.parties, id)
	return nil
}

// fakeVotes is an in-memory VoteStore
type fakeVotes struct {
	mu      sync.Mutex
	votes   map[[2]int64]int64
	castErr error
	polls   int
}

var fakeSelections = []models.PollSelection{{ID: 1, Selection: "approve"}, {ID: 2, Selection: "disapprove"}, {ID: 3, Selection: "abstain"}}

func newFakeVotes() *fakeVotes {
	return &fakeVotes{votes: map[[2]int64]int64{}}
}

func (f *fakeVotes) Cast(_ context.Context, citizenID, policyID, selectionID int64) (models.VoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.castErr != nil {
		return models.VoteResult{}, f.castErr
	}
	key := [2]int64{citizenID, policyID}
	if _, ok := f.votes[key]; ok {
		return models.AlreadyVoted(), nil
	}
	f.votes[key] = selectionID
	return models.Accepted(), nil
}

func (f *fakeVotes) HasVoted(_ context.Context, citizenID, policyID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[[2]int64{citizenID, policyID}]
	return ok, nil
}

func (f *fakeVotes) Poll(_ context.Context, policyID int64) ([]models.PollSelectionCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	counts := make([]models.PollSelectionCount, 0, len(fakeSelections))
	for _, s := range fakeSelections {
		c := models.PollSelectionCount{SelectionID: s.ID, Selection: s.Selection}
		for k, sel := range f.votes {
			if k[1] == policyID && sel == s.ID {
				c.Count++
			}
		}
		counts = append(counts, c)
	}
	return counts, nil
}

func (f *fakeVotes) Selection(_ context.Context, id int64) (models.PollSelection, error) {
	for _, s := range fakeSelections {
		if s.ID == id {
			return s, nil
		}
	}
	return models.PollSelection{}, models.ErrNotFound
}

// fakeGeo is a fixed GeoStore that counts how often it is read
type fakeGeo struct {
	mu    sync.Mutex
	reads int
}

func (f *fakeGeo) Levels(context.Context) ([]models.LevelOfPolitics, error) {
	return []models.LevelOfPolitics{{ID: 1, Name: "Federal"}, {ID: 2, Name: "Provincial"}, {ID: 3, Name: "Municipal"}}, nil
}

func (f *fakeGeo) Provinces(context.Context) ([]models.ProvinceAndTerritory, error) {
	f.mu.Lock()
	f.reads++
	f.mu.Unlock()
	return []models.ProvinceAndTerritory{{ID: 1, Name: "Ontario"}}, nil
}

func (f *fakeGeo) Municipalities(context.Context) ([]models.Municipality, error) {
	return []models.Municipality{{ID: 1, Name: "Toronto", ProvinceTerritoryID: 1}}, nil
}

func (f *fakeGeo) ElectoralDistricts(context.Context) ([]models.ElectoralDistrict, error) {
	return []models.ElectoralDistrict{{ID: 1, Name: "Spadina", ProvinceTerritoryID: 1, LevelOfPoliticsID: 1}}, nil
}

func (f *fakeGeo) PostalCodes(context.Context) ([]models.PostalCode, error) {
	return []models.PostalCode{{ID: 1, Name: "Downtown", Code: "M5V", MunicipalityID: 1, ElectoralDistrictID: 1}}, nil
}

func (f *fakeGeo) PostalCode(_ context.Context, id int64) (models.PostalCode, error) {
	if id != 1 {
		return models.PostalCode{}, models.ErrNotFound
	}
	return models.PostalCode{ID: 1, Name: "Downtown", Code: "M5V", MunicipalityID: 1, ElectoralDistrictID: 1}, nil
}

// memoryCache is a Cache over a map, storing JSON like the Redis cache
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err == nil {
		c.entries[key] = data
	}
}

func (c *memoryCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// roleChange is one call made to fakeIdentityProvider
type roleChange struct {
	op     string
	authID string
	roleID string
}

type fakeIdentityProvider struct {
	mu      sync.Mutex
	changes []roleChange
	err     error
}

func (p *fakeIdentityProvider) AddRole(_ context.Context, authID, roleID string) error {
	return p.record("add", authID, roleID)
}

func (p *fakeIdentityProvider) RemoveRole(_ context.Context, authID, roleID string) error {
	return p.record("remove", authID, roleID)
}

func (p *fakeIdentityProvider) record(op, authID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.changes = append(p.changes, roleChange{op: op, authID: authID, roleID: roleID})
	return nil
}

// auditEntry is one event captured by recordingAuditor
type auditEntry struct {
	action     string
	resource   string
	resourceID string
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAuditor) Record(_ context.Context, action, resource, resourceID string, _ interface{}, _ map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, resource: resource, resourceID: resourceID})
}

func (a *recordingAuditor) snapshot() []auditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.entries)
}

var errStoreDown = errors.New("store unavailable")
