package authz

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/sirupsen/logrus"
)

// Service answers "does this role bundle include this permission" questions
// against a casbin model with role inheritance.
type Service struct {
	cfg      Config
	enforcer *casbin.Enforcer
	rules    []Rule
	logger   *logrus.Entry
	mu       sync.RWMutex
}

// NewService constructs a Service with the provided config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()

	var logger *logrus.Entry
	if cfg.Logger != nil {
		logger = cfg.Logger.WithField("component", "authz")
	} else {
		logger = logrus.WithField("component", "authz")
	}

	enf, rules, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:      cfg,
		enforcer: enf,
		rules:    rules,
		logger:   logger,
	}, nil
}

func build(cfg Config) (*casbin.Enforcer, []Rule, error) {
	var (
		m   model.Model
		err error
	)
	if cfg.ModelPath != "" {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(cfg.ModelText)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("authz: failed to load model: %w", err)
	}

	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}

	text, err := cfg.policy()
	if err != nil {
		return nil, nil, err
	}
	rules, err := ParsePolicy(text)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Validate != nil {
		if err := cfg.Validate(rules); err != nil {
			return nil, nil, fmt.Errorf("authz: invalid policy: %w", err)
		}
	}

	for _, r := range rules {
		switch r.Section {
		case SectionPolicy:
			_, err = enf.AddPolicy(r.params()...)
		case SectionGrouping:
			_, err = enf.AddGroupingPolicy(r.params()...)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("authz: failed to load policies: %w", err)
		}
	}
	return enf, rules, nil
}

// Has reports whether the role bundle grants permission, directly or through
// an inherited bundle.
func (s *Service) Has(role, permission string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	res, err := s.enforcer.Enforce(role, permission)
	recordEnforce(res, time.Since(start))
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	return res, nil
}

// PermissionsFor returns the subset of universe granted to role, in universe order.
func (s *Service) PermissionsFor(role string, universe []string) ([]string, error) {
	out := make([]string, 0, len(universe))
	for _, perm := range universe {
		ok, err := s.Has(role, perm)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, perm)
		}
	}
	return out, nil
}

// Rules returns the loaded policy lines.
func (s *Service) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rules)
}

// Subjects lists every role named on the left side of a policy line.
func (s *Service) Subjects() []string {
	rules := s.Rules()
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Subject)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ReloadPolicy rebuilds the enforcer from the configured model and policy.
func (s *Service) ReloadPolicy(ctx context.Context) error {
	enf, rules, err := build(s.cfg)
	if err != nil {
		return fmt.Errorf("authz: reload policy failed: %w", err)
	}

	s.mu.Lock()
	s.enforcer = enf
	s.rules = rules
	s.mu.Unlock()

	policyReloads.Inc()
	s.logger.WithContext(ctx).Info("authz policy reloaded")
	return nil
}
