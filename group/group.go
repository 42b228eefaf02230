// Package group provides the node-label group identifiers used to
// partition Get lookups (and therefore the collision side-store).
package group

import (
	"fmt"

	"github.com/arloliu/idgraph/errs"
)

// MaxGroups is the fixed upper bound on distinct registered groups.
const MaxGroups = 256

// Group identifies one label/partition a Put'd identifier belongs to.
type Group struct {
	ID   uint16
	Name string
}

// Registry maps group ids to their names, capped at MaxGroups entries.
type Registry struct {
	names map[uint16]string
}

// NewRegistry creates an empty group registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[uint16]string)}
}

// Register adds g to the registry. Registering the same id twice with the
// same name is a no-op; registering it with a different name is an error.
func (r *Registry) Register(g Group) error {
	if existing, ok := r.names[g.ID]; ok {
		if existing != g.Name {
			return fmt.Errorf("%w: id=%d has %q, got %q", errs.ErrDuplicateGroup, g.ID, existing, g.Name)
		}

		return nil
	}

	if len(r.names) >= MaxGroups {
		return fmt.Errorf("%w: max=%d", errs.ErrGroupOverflow, MaxGroups)
	}

	r.names[g.ID] = g.Name

	return nil
}

// Name resolves a group id to its registered name. Returns errs.ErrUnknownGroup
// if the id was never registered.
func (r *Registry) Name(id uint16) (string, error) {
	name, ok := r.names[id]
	if !ok {
		return "", fmt.Errorf("%w: id=%d", errs.ErrUnknownGroup, id)
	}

	return name, nil
}

// NameOrEmpty resolves a group id to its name, or "" if unknown; used by
// call sites (like the collision Collector bridge) that must not fail.
func (r *Registry) NameOrEmpty(id uint16) string {
	return r.names[id]
}

// Len returns the number of registered groups.
func (r *Registry) Len() int { return len(r.names) }
