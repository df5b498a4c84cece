package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
)

// InternFunc resolves an atom name on the server. With onlyIfExists set it
// returns xproto.AtomNone instead of creating the atom.
type InternFunc func(name string, onlyIfExists bool) (xproto.Atom, error)

// AtomCache memoizes atom lookups for the lifetime of a connection. Atom ids
// never change while the connection is open, so entries are never evicted.
type AtomCache struct {
	intern InternFunc

	mu     sync.Mutex
	byName map[string]xproto.Atom
	byID   map[xproto.Atom]string
}

func NewAtomCache(intern InternFunc) *AtomCache {
	return &AtomCache{
		intern: intern,
		byName: make(map[string]xproto.Atom),
		byID:   make(map[xproto.Atom]string),
	}
}

// Atom returns the id for name, creating the atom on the server if needed.
func (a *AtomCache) Atom(name string) (xproto.Atom, error) {
	if atom, ok := a.cached(name); ok {
		return atom, nil
	}
	atom, err := a.intern(name, false)
	if err != nil {
		return xproto.AtomNone, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	a.store(name, atom)
	return atom, nil
}

// Lookup returns the id for name only if the server already knows the atom.
// Missing atoms are not cached so a later Atom call can still create them.
func (a *AtomCache) Lookup(name string) xproto.Atom {
	if atom, ok := a.cached(name); ok {
		return atom
	}
	atom, err := a.intern(name, true)
	if err != nil || atom == xproto.AtomNone {
		return xproto.AtomNone
	}
	a.store(name, atom)
	return atom
}

// Name returns the cached name of atom.
func (a *AtomCache) Name(atom xproto.Atom) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	name, ok := a.byID[atom]
	return name, ok
}

func (a *AtomCache) cached(name string) (xproto.Atom, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	atom, ok := a.byName[name]
	return atom, ok
}

func (a *AtomCache) store(name string, atom xproto.Atom) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byName[name] = atom
	a.byID[atom] = name
}
