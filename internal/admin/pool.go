package admin

import (
	"context"
	"fmt"
	"sync"
)

// Pool holds the registered admins by code.
type Pool struct {
	mu     sync.RWMutex
	admins map[string]Admin
	order  []string
}

func NewPool() *Pool {
	return &Pool{admins: make(map[string]Admin)}
}

// filterTypes are the guessed field types a datagrid filter can be built from.
var filterTypes = map[string]bool{
	TypeString:     true,
	TypeText:       true,
	TypeBoolean:    true,
	TypeInteger:    true,
	TypeModel:      true,
	TypeManyToMany: true,
}

// Register builds the show, form, list and filter views of a, in that order,
// and makes it reachable by code. Views are built once; admins hold no
// per-request state afterwards.
func (p *Pool) Register(a Admin) error {
	b := a.AdminBase()
	b.self = a

	b.show = NewShowMapper()
	a.ConfigureShowFields(b.show)
	b.form = NewFormMapper()
	a.ConfigureFormFields(b.form)
	b.list = NewListMapper()
	a.ConfigureListFields(b.list)
	b.datagrid = NewDatagridMapper()
	a.ConfigureDatagridFilters(b.datagrid)

	if mm := b.modelManager; mm != nil {
		model := a.NewInstance()
		guess := func(fields []*FieldDescription, accept map[string]bool) {
			for _, fd := range fields {
				if fd.Type != "" {
					continue
				}
				t := mm.GuessType(model, fd.Name)
				if accept == nil || accept[t] {
					fd.Type = t
				}
			}
		}
		guess(b.show.Fields(), nil)
		guess(b.form.Fields(), nil)
		guess(b.list.Fields(), nil)
		guess(b.datagrid.Fields(), filterTypes)
	}

	grid, err := NewDatagrid(b.datagrid)
	if err != nil {
		return fmt.Errorf("admin %s: %w", a.Code(), err)
	}
	b.grid = grid

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.admins[a.Code()]; exists {
		return fmt.Errorf("admin %s is already registered", a.Code())
	}
	b.pool = p
	p.admins[a.Code()] = a
	p.order = append(p.order, a.Code())
	return nil
}

// Get returns the admin registered under code, nested ones included.
func (p *Pool) Get(code string) (Admin, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.admins[code]
	return a, ok
}

// Admins returns the registered admins in registration order.
func (p *Pool) Admins() []Admin {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Admin, 0, len(p.order))
	for _, code := range p.order {
		out = append(out, p.admins[code])
	}
	return out
}

// BuildSideMenu builds the side menu shown around action of a. A child
// admin's menu is configured by its parent.
func BuildSideMenu(ctx context.Context, a Admin, action string) (*MenuItem, error) {
	menu := NewMenuItem("side_menu")
	b := a.AdminBase()
	if parent := b.Parent(); parent != nil {
		if err := parent.ConfigureSideMenu(ctx, menu, action, a); err != nil {
			return nil, err
		}
		return menu, nil
	}
	if err := a.ConfigureSideMenu(ctx, menu, action, nil); err != nil {
		return nil, err
	}
	return menu, nil
}
