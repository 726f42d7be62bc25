package editor

import (
	"context"
	"fmt"

	"github.com/nerrad567/schematic-core/internal/project"
)

// Current returns the name of the open project, or "" for an unsaved circuit.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save stores the circuit as netlist text under name and makes it the open
// project. An existing project with that name is overwritten.
func (s *Session) Save(ctx context.Context, name string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects == nil {
		return nil, ErrNoProjectStore
	}

	text, err := s.netlist.ExportCircuit(s.svc)
	if err != nil {
		return nil, fmt.Errorf("exporting circuit: %w", err)
	}

	p := &project.Project{Name: name, Netlist: text, ElementCount: s.svc.Len()}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, err
	}
	s.current = p.Name
	s.logger.Info("project saved", "name", p.Name, "elements", p.ElementCount)

	if s.onSave != nil {
		s.onSave(*p)
	}
	return p, nil
}

// Open replaces the circuit with a saved project and clears the history.
func (s *Session) Open(ctx context.Context, name string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects == nil {
		return nil, ErrNoProjectStore
	}

	p, err := s.projects.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.loadNetlist(p.Netlist); err != nil {
		return nil, fmt.Errorf("loading project %s: %w", name, err)
	}
	s.current = p.Name
	s.logger.Info("project opened", "name", p.Name, "elements", p.ElementCount)
	return p, nil
}

// Projects lists the saved projects, most recently updated first.
func (s *Session) Projects(ctx context.Context) ([]project.Project, error) {
	if s.projects == nil {
		return nil, ErrNoProjectStore
	}
	return s.projects.List(ctx)
}

// RenameProject renames a saved project, following the rename when it is
// the open one.
func (s *Session) RenameProject(ctx context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects == nil {
		return ErrNoProjectStore
	}
	if err := s.projects.Rename(ctx, from, to); err != nil {
		return err
	}
	if s.current == from {
		s.current, _ = project.ValidateName(to)
	}
	return nil
}

// DeleteProject removes a saved project. The open circuit is kept but is no
// longer bound to the deleted name.
func (s *Session) DeleteProject(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projects == nil {
		return ErrNoProjectStore
	}
	if err := s.projects.Delete(ctx, name); err != nil {
		return err
	}
	if s.current == name {
		s.current = ""
	}
	return nil
}
