package services

import (
	"errors"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// MultiBroadcaster fans every event out to several sinks. A failing sink
// does not stop delivery to the others.
type MultiBroadcaster struct {
	sinks []ports.EventBroadcaster
}

var _ ports.EventBroadcaster = (*MultiBroadcaster)(nil)

func NewMultiBroadcaster(sinks ...ports.EventBroadcaster) *MultiBroadcaster {
	out := make([]ports.EventBroadcaster, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiBroadcaster{sinks: out}
}

func (m *MultiBroadcaster) Broadcast(event domain.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Broadcast(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
