package replay

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	replaysObject = "replays"
	indexProperty = "index"
)

var ErrNotFound = errors.New("replay: not found")

// Store keeps replays in the per-user data directory. Each replay is one
// property of the replays object; an index property lists them in save
// order.
type Store struct {
	data *gdata.Manager
}

func NewStore(data *gdata.Manager) *Store {
	return &Store{data: data}
}

// OpenStore opens the gdata manager for appName.
func OpenStore(appName string) (*Store, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("replay: open store: %w", err)
	}
	return NewStore(m), nil
}

func (s *Store) Save(r *Replay) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	if err := s.data.SaveObjectProp(replaysObject, r.ID.String(), data); err != nil {
		return fmt.Errorf("replay: save %s: %w", r.ID, err)
	}
	ids, err := s.List()
	if err != nil {
		return err
	}
	if slices.Contains(ids, r.ID) {
		return nil
	}
	return s.saveIndex(append(ids, r.ID))
}

func (s *Store) Load(id uuid.UUID) (*Replay, error) {
	if !s.data.ObjectPropExists(replaysObject, id.String()) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	data, err := s.data.LoadObjectProp(replaysObject, id.String())
	if err != nil {
		return nil, fmt.Errorf("replay: load %s: %w", id, err)
	}
	return Decode(data)
}

// List returns the ids of saved replays, oldest first.
func (s *Store) List() ([]uuid.UUID, error) {
	if !s.data.ObjectPropExists(replaysObject, indexProperty) {
		return nil, nil
	}
	data, err := s.data.LoadObjectProp(replaysObject, indexProperty)
	if err != nil {
		return nil, fmt.Errorf("replay: load index: %w", err)
	}
	var ids []uuid.UUID
	if err := yaml.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("replay: decode index: %w", err)
	}
	return ids, nil
}

// Latest returns the most recently saved replay.
func (s *Store) Latest() (*Replay, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return s.Load(ids[len(ids)-1])
}

func (s *Store) saveIndex(ids []uuid.UUID) error {
	data, err := yaml.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.data.SaveObjectProp(replaysObject, indexProperty, data); err != nil {
		return fmt.Errorf("replay: save index: %w", err)
	}
	return nil
}
