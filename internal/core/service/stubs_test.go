package service

import (
	"context"
	"errors"
	"sync"

	"github.com/academyhq/academy-client/internal/core/domain"
)

type stubAuthAPI struct {
	mu          sync.Mutex
	loginFn     func(ctx context.Context, email, password string) (*domain.Identity, error)
	logoutFn    func(ctx context.Context) error
	meFn        func(ctx context.Context) (*domain.Identity, error)
	loginCalls  int
	logoutCalls int
	meCalls     int
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	s.mu.Lock()
	s.loginCalls++
	fn := s.loginFn
	s.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected Login call")
	}
	return fn(ctx, email, password)
}

func (s *stubAuthAPI) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.logoutCalls++
	fn := s.logoutFn
	s.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (s *stubAuthAPI) Me(ctx context.Context) (*domain.Identity, error) {
	s.mu.Lock()
	s.meCalls++
	fn := s.meFn
	s.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected Me call")
	}
	return fn(ctx)
}

type stubStore struct {
	mu       sync.Mutex
	identity *domain.Identity
	loadErr  error
	saveErr  error
	clearErr error
	clears   int
}

func (s *stubStore) Load(ctx context.Context) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.identity == nil {
		return nil, domain.ErrNoProjection
	}
	cp := *s.identity
	return &cp, nil
}

func (s *stubStore) Save(ctx context.Context, identity *domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	cp := *identity
	s.identity = &cp
	return nil
}

func (s *stubStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.identity = nil
	s.loadErr = nil
	return nil
}

func (s *stubStore) held() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

type stubVerifier struct {
	mu       sync.Mutex
	verifyFn func(ctx context.Context) (*domain.Identity, error)
	calls    int
}

func (s *stubVerifier) Verify(ctx context.Context) (*domain.Identity, error) {
	s.mu.Lock()
	s.calls++
	fn := s.verifyFn
	s.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected Verify call")
	}
	return fn(ctx)
}

func (s *stubVerifier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubResourceAPI struct {
	mu        sync.Mutex
	listFn    func(resource domain.ResourceType, query domain.ListQuery) (*domain.ListPage, error)
	createFn  func(resource domain.ResourceType, entity domain.Entity) (domain.Entity, error)
	updateFn  func(resource domain.ResourceType, id string, entity domain.Entity) (domain.Entity, error)
	deleteFn  func(resource domain.ResourceType, id string) error
	listCalls int
}

func (s *stubResourceAPI) List(ctx context.Context, resource domain.ResourceType, query domain.ListQuery) (*domain.ListPage, error) {
	s.mu.Lock()
	s.listCalls++
	fn := s.listFn
	s.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected List call")
	}
	return fn(resource, query)
}

func (s *stubResourceAPI) Create(ctx context.Context, resource domain.ResourceType, entity domain.Entity) (domain.Entity, error) {
	s.mu.Lock()
	fn := s.createFn
	s.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected Create call")
	}
	return fn(resource, entity)
}

func (s *stubResourceAPI) Update(ctx context.Context, resource domain.ResourceType, id string, entity domain.Entity) (domain.Entity, error) {
	s.mu.Lock()
	fn := s.updateFn
	s.mu.Unlock()
	if fn == nil {
		return nil, errors.New("unexpected Update call")
	}
	return fn(resource, id, entity)
}

func (s *stubResourceAPI) Delete(ctx context.Context, resource domain.ResourceType, id string) error {
	s.mu.Lock()
	fn := s.deleteFn
	s.mu.Unlock()
	if fn == nil {
		return errors.New("unexpected Delete call")
	}
	return fn(resource, id)
}

func (s *stubResourceAPI) lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func approvedIdentity(role domain.Role) domain.Identity {
	return domain.Identity{
		ID:               "u-1",
		Email:            "user@academy.test",
		FirstName:        "Rui",
		LastName:         "Costa",
		Role:             role,
		Status:           domain.StatusApproved,
		ProfileCompleted: true,
	}
}
