package backendstub

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/frahmantamala/campus-resources/internal"
)

// Doc is one stored record as the wire sees it.
type Doc map[string]any

func (d Doc) clone() Doc {
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (d Doc) String(key string) string {
	if v, ok := d[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

type collection struct {
	nextID int64
	rows   map[int64]Doc
}

// Account is a user able to sign in to the stub.
type Account struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Role         string
}

// Store keeps every collection in memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	accounts    map[string]Account
	now         func() time.Time
}

func NewStore(resources ...string) *Store {
	s := &Store{
		collections: make(map[string]*collection, len(resources)),
		accounts:    make(map[string]Account),
		now:         time.Now,
	}
	for _, name := range resources {
		s.collections[name] = &collection{nextID: 1, rows: make(map[int64]Doc)}
	}
	return s
}

func (s *Store) Has(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[resource]
	return ok
}

func (s *Store) AddAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Email] = a
}

func (s *Store) Account(email string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[email]
	return a, ok
}

// List returns the page of rows matching every filter, ordered by id.
func (s *Store) List(resource string, page, size int, filters map[string]string) ([]Doc, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(resource)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]Doc, 0, len(c.rows))
	for _, id := range sortedIDs(c.rows) {
		doc := c.rows[id]
		if matches(doc, filters) {
			matched = append(matched, doc.clone())
		}
	}

	total := len(matched)
	start := (page - 1) * size
	if start >= total {
		return []Doc{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) Get(resource string, id int64) (Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	doc, ok := c.rows[id]
	if !ok {
		return nil, notFound(resource, id)
	}
	return doc.clone(), nil
}

func (s *Store) Create(resource string, doc Doc) (Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	return s.insert(c, doc), nil
}

func (s *Store) CreateMany(resource string, docs []Doc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(resource)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		s.insert(c, doc)
	}
	return len(docs), nil
}

// Update merges fields into the row; id and created_at are kept.
func (s *Store) Update(resource string, id int64, fields Doc) (Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(resource)
	if err != nil {
		return nil, err
	}
	doc, ok := c.rows[id]
	if !ok {
		return nil, notFound(resource, id)
	}
	for k, v := range fields {
		if k == "id" || k == "created_at" {
			continue
		}
		doc[k] = v
	}
	doc["updated_at"] = s.now().UTC()
	return doc.clone(), nil
}

// UpdateMany applies fields to every id, failing before any write if one is missing.
func (s *Store) UpdateMany(resource string, ids []int64, fields Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(resource)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := c.rows[id]; !ok {
			return notFound(resource, id)
		}
	}
	now := s.now().UTC()
	for _, id := range ids {
		for k, v := range fields {
			c.rows[id][k] = v
		}
		c.rows[id]["updated_at"] = now
	}
	return nil
}

func (s *Store) Delete(resource string, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.collection(resource)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, id := range ids {
		if _, ok := c.rows[id]; ok {
			delete(c.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) insert(c *collection, doc Doc) Doc {
	row := doc.clone()
	id := c.nextID
	c.nextID++
	now := s.now().UTC()
	row["id"] = id
	row["created_at"] = now
	row["updated_at"] = now
	c.rows[id] = row
	return row.clone()
}

func (s *Store) collection(resource string) (*collection, error) {
	c, ok := s.collections[resource]
	if !ok {
		return nil, internal.NewNotFoundError(fmt.Sprintf("unknown resource %q", resource), internal.ErrCodeRecordNotFound)
	}
	return c, nil
}

func notFound(resource string, id int64) error {
	return internal.NewNotFoundError(fmt.Sprintf("%s %d not found", resource, id), internal.ErrCodeRecordNotFound)
}

func sortedIDs(rows map[int64]Doc) []int64 {
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func matches(doc Doc, filters map[string]string) bool {
	for key, want := range filters {
		if doc.String(key) != want {
			return false
		}
	}
	return true
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, internal.NewValidationFieldError("id", "id must be a positive integer", internal.ErrCodeInvalidValue)
	}
	return id, nil
}
