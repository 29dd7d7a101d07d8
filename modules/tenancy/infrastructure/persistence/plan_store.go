package persistence

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
)

type planFile struct {
	Plans []plan.Plan `yaml:"plans"`
}

// MemoryPlanStore keeps the catalogue in memory. Reads take the read lock and
// return copies; Update holds the write lock for the whole mutation.
type MemoryPlanStore struct {
	mu      sync.RWMutex
	order   []plan.ID
	plans   map[plan.ID]plan.Plan
	persist func([]plan.Plan) error
}

func NewMemoryPlanStore(plans []plan.Plan) *MemoryPlanStore {
	s := &MemoryPlanStore{plans: make(map[plan.ID]plan.Plan, len(plans))}
	for _, p := range plans {
		if _, ok := s.plans[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.plans[p.ID] = p
	}
	return s
}

func (s *MemoryPlanStore) Get(_ context.Context, id plan.ID) (plan.Plan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	return p, ok
}

func (s *MemoryPlanStore) List(_ context.Context) []plan.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *MemoryPlanStore) snapshot() []plan.Plan {
	out := make([]plan.Plan, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.plans[id])
	}
	return out
}

func (s *MemoryPlanStore) Update(_ context.Context, id plan.ID, mutate func(plan.Plan) (plan.Plan, error)) (plan.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.plans[id]
	if !ok {
		return plan.Plan{}, errors.Wrap(plan.ErrPlanNotFound, string(id))
	}
	next, err := mutate(current)
	if err != nil {
		return plan.Plan{}, err
	}
	if next.ID != id {
		return plan.Plan{}, errors.Errorf("plan id cannot change from %q to %q", id, next.ID)
	}

	if s.persist != nil {
		all := s.snapshot()
		all[slices.Index(s.order, id)] = next
		if err := s.persist(all); err != nil {
			return plan.Plan{}, err
		}
	}
	s.plans[id] = next
	return next, nil
}

// PlanFileStore is a MemoryPlanStore backed by a YAML file. Every update
// rewrites the file through a temp file and rename.
type PlanFileStore struct {
	*MemoryPlanStore
	path string
}

// OpenPlanFileStore loads path, creating it from defaults when it does not exist.
func OpenPlanFileStore(path string, defaults []plan.Plan) (*PlanFileStore, error) {
	plans, err := readPlanFile(path)
	if errors.Is(err, os.ErrNotExist) {
		plans = defaults
		if err := writePlanFile(path, plans); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	for _, p := range plans {
		if err := p.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid plan %q in %s", p.ID, path)
		}
	}

	fs := &PlanFileStore{MemoryPlanStore: NewMemoryPlanStore(plans), path: path}
	fs.persist = func(all []plan.Plan) error {
		return writePlanFile(fs.path, all)
	}
	return fs, nil
}

func (s *PlanFileStore) Path() string {
	return s.path
}

func readPlanFile(path string) ([]plan.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f planFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(f.Plans) == 0 {
		return nil, errors.Errorf("%s defines no plans", path)
	}
	return f.Plans, nil
}

func writePlanFile(path string, plans []plan.Plan) error {
	data, err := yaml.Marshal(planFile{Plans: plans})
	if err != nil {
		return errors.Wrap(err, "failed to encode plans")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create plans directory")
	}
	tmp, err := os.CreateTemp(dir, ".plans-*.yaml")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write plans")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "failed to replace plans file")
	}
	return nil
}
