package dataprocessing

import (
	"sort"
	"strings"
	"time"

	"floxcli/internal/ingest"
	"floxcli/pkg/contracts/domain"
)

// Tokenize splits a free-text groups field on commas.
// Tokens are trimmed, empty ones dropped, and row order is kept.
func Tokenize(text string) []string {
	parts := strings.Split(text, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// TokenMap collects group tokens per user id in first-seen user order
type TokenMap struct {
	order  []int64
	tokens map[int64][]string
}

// NewTokenMap creates an empty token map
func NewTokenMap() *TokenMap {
	return &TokenMap{tokens: make(map[int64][]string)}
}

// Add appends tokens under userID. A user id is registered even without tokens.
func (m *TokenMap) Add(userID int64, tokens ...string) {
	if _, ok := m.tokens[userID]; !ok {
		m.order = append(m.order, userID)
		m.tokens[userID] = nil
	}
	m.tokens[userID] = append(m.tokens[userID], tokens...)
}

// UserIDs returns user ids in the order they were first added
func (m *TokenMap) UserIDs() []int64 {
	return m.order
}

// Tokens returns the accumulated tokens of userID
func (m *TokenMap) Tokens(userID int64) []string {
	return m.tokens[userID]
}

// Len returns the number of distinct user ids
func (m *TokenMap) Len() int {
	return len(m.order)
}

// Distinct returns every token once, sorted byte-wise
func (m *TokenMap) Distinct() []string {
	seen := make(map[string]struct{})
	for _, toks := range m.tokens {
		for _, t := range toks {
			seen[t] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupIndex is the registry of extracted groups.
// Ids are dense, start at 1 and follow sorted-name order.
type GroupIndex struct {
	groups []*domain.Group
	byName map[string]int
}

// NewGroupIndex creates an empty index
func NewGroupIndex() *GroupIndex {
	return &GroupIndex{byName: make(map[string]int)}
}

// Lookup returns the id of the group named name
func (gi *GroupIndex) Lookup(name string) (int, bool) {
	id, ok := gi.byName[name]
	return id, ok
}

// Get returns the group with the given id
func (gi *GroupIndex) Get(id int) (*domain.Group, bool) {
	if id < 1 || id > len(gi.groups) {
		return nil, false
	}
	return gi.groups[id-1], true
}

// Groups returns groups in ascending id order
func (gi *GroupIndex) Groups() []*domain.Group {
	return gi.groups
}

// Len returns the number of groups
func (gi *GroupIndex) Len() int {
	return len(gi.groups)
}

func (gi *GroupIndex) add(g *domain.Group) {
	gi.groups = append(gi.groups, g)
	gi.byName[g.Name] = g.GroupID
}

// Extractor turns the groups column into a group registry
type Extractor struct {
	Rules []CategoryRule
	Now   func() time.Time
}

// NewExtractor creates an extractor with the default rule table and wall clock
func NewExtractor() *Extractor {
	return &Extractor{Rules: CategoryRules, Now: time.Now}
}

// CollectTokens builds the token map from rows.
// Rows whose user id does not parse are not attributable and contribute nothing.
func CollectTokens(rows []ingest.Row) *TokenMap {
	tm := NewTokenMap()
	for _, row := range rows {
		userID, err := row.UserID.Int()
		if err != nil {
			continue
		}
		var tokens []string
		if !row.Groups.IsNull() {
			tokens = Tokenize(row.Groups.String())
		}
		tm.Add(userID, tokens...)
	}
	return tm
}

// Extract builds the group index for the tokens in tm. It never fails.
func (e *Extractor) Extract(tm *TokenMap) *GroupIndex {
	rules := e.Rules
	if rules == nil {
		rules = CategoryRules
	}
	now := e.Now
	if now == nil {
		now = time.Now
	}

	gi := NewGroupIndex()
	for i, name := range tm.Distinct() {
		g := domain.NewGroup(i+1, name, now())
		g.Category = ClassifyWith(name, rules)
		g.Year = ExtractYear(name)
		gi.add(g)
	}
	return gi
}
