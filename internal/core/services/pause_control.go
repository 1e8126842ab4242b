package services

import (
	"sync/atomic"

	"github.com/lorrc/ticketing-system/internal/core/domain"
)

// PauseControl holds the admin stop switches, one per actor kind. The pool
// never reads them; actor loops consult them between iterations.
type PauseControl struct {
	vendorsStopped   atomic.Bool
	customersStopped atomic.Bool
}

func NewPauseControl() *PauseControl {
	return &PauseControl{}
}

// Stopped reports whether the admin switch for kind is set.
func (p *PauseControl) Stopped(kind domain.Role) bool {
	switch kind {
	case domain.RoleVendor:
		return p.vendorsStopped.Load()
	case domain.RoleCustomer:
		return p.customersStopped.Load()
	default:
		return false
	}
}

// Stop sets the admin switch for kind.
func (p *PauseControl) Stop(kind domain.Role) {
	p.set(kind, true)
}

// Resume clears the admin switch for kind.
func (p *PauseControl) Resume(kind domain.Role) {
	p.set(kind, false)
}

func (p *PauseControl) StopAll() {
	p.Stop(domain.RoleVendor)
	p.Stop(domain.RoleCustomer)
}

func (p *PauseControl) ResumeAll() {
	p.Resume(domain.RoleVendor)
	p.Resume(domain.RoleCustomer)
}

// AllStopped reports whether both switches are set.
func (p *PauseControl) AllStopped() bool {
	return p.vendorsStopped.Load() && p.customersStopped.Load()
}

func (p *PauseControl) Status() domain.AdminStatus {
	return domain.AdminStatus{
		VendorsStopped:   p.vendorsStopped.Load(),
		CustomersStopped: p.customersStopped.Load(),
	}
}

func (p *PauseControl) set(kind domain.Role, v bool) {
	switch kind {
	case domain.RoleVendor:
		p.vendorsStopped.Store(v)
	case domain.RoleCustomer:
		p.customersStopped.Store(v)
	}
}
