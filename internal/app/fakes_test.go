package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hylla/taskcollab/internal/domain"
)

type fakeStore struct {
	mu   sync.Mutex
	docs map[string]map[string]Fields
	next int
	// failOn makes the named collection fail every call.
	failOn string
	// failDeletesOn makes deletes in the named collection fail; reads still work.
	failDeletesOn string
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]Fields{}}
}

func (f *fakeStore) check(collection string) error {
	if f.failOn != "" && f.failOn == collection {
		return fmt.Errorf("store %s unavailable", collection)
	}
	return nil
}

func (f *fakeStore) coll(name string) map[string]Fields {
	c, ok := f.docs[name]
	if !ok {
		c = map[string]Fields{}
		f.docs[name] = c
	}
	return c
}

func (f *fakeStore) Create(_ context.Context, collection string, fields Fields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(collection); err != nil {
		return "", err
	}
	f.next++
	id := "doc-" + strconv.Itoa(f.next)
	f.coll(collection)[id] = maps.Clone(fields)
	return id, nil
}

func (f *fakeStore) Set(_ context.Context, collection, id string, fields Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(collection); err != nil {
		return err
	}
	f.coll(collection)[id] = maps.Clone(fields)
	return nil
}

func (f *fakeStore) Get(_ context.Context, collection, id string) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(collection); err != nil {
		return Record{}, err
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Fields: maps.Clone(doc)}, nil
}

func (f *fakeStore) Query(_ context.Context, collection string, q Query) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(collection); err != nil {
		return nil, err
	}
	var out []Record
	for id, doc := range f.coll(collection) {
		if matchesAll(doc, q.Where) {
			out = append(out, Record{ID: id, Fields: maps.Clone(doc)})
		}
	}
	slices.SortFunc(out, func(a, b Record) int {
		for _, o := range q.OrderBy {
			c := compareValues(a.Fields[o.Field], b.Fields[o.Field])
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return compareValues(a.ID, b.ID)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, collection, id string, fields Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(collection); err != nil {
		return err
	}
	doc, ok := f.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	maps.Copy(doc, fields)
	return nil
}

func (f *fakeStore) checkDelete(collection string) error {
	if f.failDeletesOn != "" && f.failDeletesOn == collection {
		return fmt.Errorf("delete in %s refused", collection)
	}
	return f.check(collection)
}

func (f *fakeStore) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkDelete(collection); err != nil {
		return err
	}
	delete(f.coll(collection), id)
	return nil
}

func (f *fakeStore) BulkUpdate(ctx context.Context, collection string, updates []RecordUpdate) error {
	for _, u := range updates {
		if err := f.Update(ctx, collection, u.ID, u.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) BulkDelete(ctx context.Context, collection string, ids []string) error {
	for _, id := range ids {
		if err := f.Delete(ctx, collection, id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) DeleteByQuery(_ context.Context, collection string, where []Predicate) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.checkDelete(collection); err != nil {
		return 0, err
	}
	n := 0
	for id, doc := range f.coll(collection) {
		if matchesAll(doc, where) {
			delete(f.coll(collection), id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.coll(collection))
}

func (f *fakeStore) field(collection, id, field string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coll(collection)[id][field]
}

func matchesAll(doc Fields, where []Predicate) bool {
	for _, p := range where {
		c := compareValues(doc[p.Field], p.Value)
		ok := false
		switch p.Op {
		case OpEq:
			ok = c == 0
		case OpNe:
			ok = c != 0
		case OpLt:
			ok = c < 0
		case OpLte:
			ok = c <= 0
		case OpGt:
			ok = c > 0
		case OpGte:
			ok = c >= 0
		}
		if !ok {
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

type fakeNotifier struct {
	mu       sync.Mutex
	requests []EmailRequest
	fail     bool
}

func (f *fakeNotifier) SendEmail(_ context.Context, req EmailRequest) EmailResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.fail {
		return EmailResult{Success: false, Message: "smtp down"}
	}
	return EmailResult{Success: true, Message: "📩 Email sent successfully"}
}

type fakeBlobs struct {
	objects map[string][]byte
}

func (f *fakeBlobs) Put(_ context.Context, key, _ string, body io.Reader) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = content
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	content, ok := f.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type fakeResponder struct {
	reply   string
	prompts []string
}

func (f *fakeResponder) Reply(_ context.Context, _ []domain.ChatMessage, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, nil
}

// sequentialIDs returns 1, 2, 3, ... and is safe for concurrent use.
func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return strconv.Itoa(n)
	}
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
