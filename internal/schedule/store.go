// Package schedule persists user-defined message schedules and the
// scheduler activity log as flat JSON files.
package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Item is one user-defined schedule. IDs are assigned by the store.
type Item struct {
	ID         int    `json:"id"`
	Enabled    bool   `json:"enabled"`
	Name       string `json:"name"`
	Frequency  string `json:"frequency" validate:"required,oneof=minutes hours day days monday tuesday wednesday thursday friday saturday sunday"`
	Time       string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Interval   int    `json:"interval,omitempty" validate:"gte=0"`
	Day        string `json:"day,omitempty"`
	Message    string `json:"message"`
	Action     string `json:"action"`
	Channel    int    `json:"channel" validate:"gte=0"`
	Interface  int    `json:"interface" validate:"gte=1,lte=9"`
	TargetNode string `json:"targetNode,omitempty"`
}

// Store reads and writes the schedule list at a fixed path.
type Store struct {
	path string
}

// NewStore returns a Store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

type scheduleFile struct {
	Schedules []Item `json:"schedules"`
}

// List returns all schedules. A missing file is an empty list.
func (s *Store) List() ([]Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schedules: %w", err)
	}
	var doc scheduleFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schedules: %w", err)
	}
	return doc.Schedules, nil
}

// Get returns the schedule with the given id, or ok=false.
func (s *Store) Get(id int) (Item, bool, error) {
	items, err := s.List()
	if err != nil {
		return Item{}, false, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, true, nil
		}
	}
	return Item{}, false, nil
}

// Create assigns the next id and appends the schedule.
func (s *Store) Create(item Item) (Item, error) {
	items, err := s.List()
	if err != nil {
		return Item{}, err
	}
	next := 1
	for _, existing := range items {
		if existing.ID >= next {
			next = existing.ID + 1
		}
	}
	item.ID = next
	items = append(items, item)
	if err := s.save(items); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update replaces the schedule with the given id, keeping the id.
// Reports ok=false when no such schedule exists.
func (s *Store) Update(id int, item Item) (Item, bool, error) {
	items, err := s.List()
	if err != nil {
		return Item{}, false, err
	}
	for i, existing := range items {
		if existing.ID == id {
			item.ID = id
			items[i] = item
			if err := s.save(items); err != nil {
				return Item{}, false, err
			}
			return item, true, nil
		}
	}
	return Item{}, false, nil
}

// Delete removes the schedule with the given id. Reports ok=false when no
// such schedule exists.
func (s *Store) Delete(id int) (bool, error) {
	items, err := s.List()
	if err != nil {
		return false, err
	}
	for i, existing := range items {
		if existing.ID == id {
			items = append(items[:i], items[i+1:]...)
			if err := s.save(items); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(scheduleFile{Schedules: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schedules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write schedules: %w", err)
	}
	return nil
}
