package usecase

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/session"
)

// AddressAPI is the public address lookup of the shop API.
type AddressAPI interface {
	Provinces(ctx context.Context) ([]model.Province, error)
	Districts(ctx context.Context, provinceCode string) ([]model.District, error)
	Wards(ctx context.Context, districtCode string) ([]model.Ward, error)
}

// AddressState is what the address form currently shows.
type AddressState struct {
	Province  string
	District  string
	Districts []model.District
	Wards     []model.Ward
}

// lookup tracks the in-flight fetch of one dependent level.
type lookup struct {
	gen    uint64
	cancel context.CancelFunc
}

// begin supersedes the running fetch and returns the generation of the new one.
func (l *lookup) begin(ctx context.Context) (context.Context, uint64) {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	fctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	return fctx, l.gen
}

// invalidate cancels the running fetch so its result is never applied.
func (l *lookup) invalidate() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}

func (l *lookup) finish(gen uint64) bool {
	if gen != l.gen {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return true
}

// AddressSelector drives the province, district and ward cascade of one session.
// Selecting a parent cancels the child lookup in flight, and a late response of a
// superseded selection is discarded.
type AddressSelector struct {
	api AddressAPI

	mu        sync.Mutex
	state     AddressState
	districts lookup
	wards     lookup
}

// NewAddressSelector builds a selector with nothing chosen.
func NewAddressSelector(api AddressAPI) *AddressSelector {
	return &AddressSelector{api: api}
}

// Provinces lists the top level.
func (s *AddressSelector) Provinces(ctx context.Context) ([]model.Province, error) {
	return s.api.Provinces(ctx)
}

// SelectProvince chooses a province and loads its districts.
func (s *AddressSelector) SelectProvince(ctx context.Context, code string) ([]model.District, error) {
	s.mu.Lock()
	s.wards.invalidate()
	fctx, gen := s.districts.begin(ctx)
	s.state = AddressState{Province: code}
	s.mu.Unlock()

	districts, err := s.api.Districts(fctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.districts.finish(gen) {
		return nil, domainErrors.ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	s.state.Districts = districts
	return districts, nil
}

// SelectDistrict chooses a district of the current province and loads its wards.
func (s *AddressSelector) SelectDistrict(ctx context.Context, code string) ([]model.Ward, error) {
	s.mu.Lock()
	if s.state.Province == "" {
		s.mu.Unlock()
		return nil, domainErrors.ErrNotFound
	}
	fctx, gen := s.wards.begin(ctx)
	s.state.District = code
	s.state.Wards = nil
	s.mu.Unlock()

	wards, err := s.api.Wards(fctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.wards.finish(gen) {
		return nil, domainErrors.ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	s.state.Wards = wards
	return wards, nil
}

// State returns a copy of the current selection.
func (s *AddressSelector) State() AddressState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Districts = append([]model.District(nil), s.state.Districts...)
	out.Wards = append([]model.Ward(nil), s.state.Wards...)
	return out
}

// AddressUseCase keeps one selector per session.
type AddressUseCase struct {
	api AddressAPI

	mu        sync.Mutex
	selectors map[string]*AddressSelector
}

// NewAddressUseCase constructs AddressUseCase.
func NewAddressUseCase(api AddressAPI) *AddressUseCase {
	return &AddressUseCase{api: api, selectors: make(map[string]*AddressSelector)}
}

func (u *AddressUseCase) selector(h *session.Handle) *AddressSelector {
	u.mu.Lock()
	defer u.mu.Unlock()
	id := h.ID()
	sel, ok := u.selectors[id]
	if !ok {
		sel = NewAddressSelector(u.api)
		u.selectors[id] = sel
	}
	return sel
}

// Provinces lists the top level.
func (u *AddressUseCase) Provinces(ctx context.Context) ([]model.Province, error) {
	return u.api.Provinces(ctx)
}

// SelectProvince selects a province for the session.
func (u *AddressUseCase) SelectProvince(ctx context.Context, h *session.Handle, code string) ([]model.District, error) {
	return u.selector(h).SelectProvince(ctx, code)
}

// SelectDistrict selects a district for the session.
func (u *AddressUseCase) SelectDistrict(ctx context.Context, h *session.Handle, code string) ([]model.Ward, error) {
	return u.selector(h).SelectDistrict(ctx, code)
}

// State returns the session's current selection.
func (u *AddressUseCase) State(h *session.Handle) AddressState {
	return u.selector(h).State()
}

// Forget drops the selector of a closed session.
func (u *AddressUseCase) Forget(sessionID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.selectors, sessionID)
}
