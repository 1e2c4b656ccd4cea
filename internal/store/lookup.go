package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// LookupLog is a small (id, text) table keeping long forecast strings out of
// the predictions log. New text gets id = max + 1, or 0 when the table is
// empty; existing text is never re-keyed. Updates rewrite the whole file,
// the only place this system overwrites anything.
type LookupLog struct {
	path      string
	valueName string
	logger    *zap.Logger
	mu        sync.Mutex
}

func NewLookupLog(path, valueName string, logger *zap.Logger) *LookupLog {
	return &LookupLog{path: path, valueName: valueName, logger: logger}
}

// ReadAll returns text -> id for every stored entry. Missing file means an
// empty table.
func (l *LookupLog) ReadAll() (map[string]int64, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]int64{}, nil
		}
		return nil, fmt.Errorf("opening lookup %s: %w", l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lookup %s: %w", l.path, err)
	}
	out := make(map[string]int64)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != 2 {
			return nil, fmt.Errorf("lookup %s row %d: expected 2 columns, got %d", l.path, i+1, len(rec))
		}
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("lookup %s row %d: parsing id %q: %w", l.path, i+1, rec[0], err)
		}
		out[rec[1]] = id
	}
	return out, nil
}

// Resolve returns ids for all values, minting ids for unknown ones and
// rewriting the file when anything new appeared.
func (l *LookupLog) Resolve(values []string) (map[string]int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.ReadAll()
	if err != nil {
		return nil, err
	}

	nextID := int64(0)
	if len(existing) > 0 {
		for _, id := range existing {
			if id+1 > nextID {
				nextID = id + 1
			}
		}
	}

	added := 0
	newValues := make([]string, 0)
	seen := make(map[string]bool)
	for _, v := range values {
		if _, ok := existing[v]; !ok && !seen[v] {
			newValues = append(newValues, v)
			seen[v] = true
		}
	}
	sort.Strings(newValues)
	for _, v := range newValues {
		existing[v] = nextID
		nextID++
		added++
	}

	if added > 0 {
		if err := l.rewrite(existing); err != nil {
			return nil, err
		}
		l.logger.Info("Lookup table updated",
			zap.String("path", l.path),
			zap.Int("added", added))
	}
	return existing, nil
}

func (l *LookupLog) rewrite(entries map[string]int64) error {
	type entry struct {
		id   int64
		text string
	}
	ordered := make([]entry, 0, len(entries))
	for text, id := range entries {
		ordered = append(ordered, entry{id, text})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].id < ordered[j].id })

	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("rewriting lookup %s: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", l.valueName}); err != nil {
		return fmt.Errorf("writing lookup header: %w", err)
	}
	for _, e := range ordered {
		if err := w.Write([]string{strconv.FormatInt(e.id, 10), e.text}); err != nil {
			return fmt.Errorf("writing lookup row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
