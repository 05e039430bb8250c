// Package locator resolves feed UI elements through ordered chains of
// selector tactics. LinkedIn's markup shifts between rollouts, so each role
// carries several ways of finding the same control, tried most-specific
// first. The first visible, enabled match wins.
package locator

import (
	"errors"
	"fmt"
	"log"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

// ErrNotFound reports that no tactic in a chain produced a usable element.
// It is an expected outcome, not a browser failure.
var ErrNotFound = errors.New("element not found")

// Role names a UI control the pipeline needs to locate.
type Role string

const (
	RoleCommentButton Role = "comment-button"
	RoleSubmitButton  Role = "submit-button"
	RoleTextEditor    Role = "text-editor"
	RoleExpandButton  Role = "expand-button"
	RoleAuthorName    Role = "author-name"
	RolePostContainer Role = "post-container"
)

// Finder is the element search capability the locator needs. *session.Session
// satisfies it.
type Finder interface {
	Find(scope, sel string) ([]session.Element, error)
}

// Tactic is one way of locating a role: a CSS query plus an optional filter
// over the candidates it returns.
type Tactic struct {
	Name   string
	Query  string
	Accept func(session.Element) bool
}

// Locate runs the chain for role against the subtree under scope and returns
// the first visible, enabled element any tactic accepts. A missing element
// returns ErrNotFound; only browser-level failures return other errors.
func Locate(f Finder, scope string, role Role) (session.Element, error) {
	chain, ok := chains[role]
	if !ok {
		return session.Element{}, fmt.Errorf("no tactics registered for role %s", role)
	}
	for _, tactic := range chain {
		els, err := f.Find(scope, tactic.Query)
		if err != nil {
			return session.Element{}, err
		}
		for _, el := range els {
			if !el.Visible || !el.Enabled {
				continue
			}
			if tactic.Accept != nil && !tactic.Accept(el) {
				continue
			}
			log.Printf("located %s via tactic %q", role, tactic.Name)
			return el, nil
		}
	}
	return session.Element{}, fmt.Errorf("%s: %w", role, ErrNotFound)
}

// LocateAll returns every visible element matched by the first tactic that
// yields any, preserving document order.
func LocateAll(f Finder, scope string, role Role) ([]session.Element, error) {
	chain, ok := chains[role]
	if !ok {
		return nil, fmt.Errorf("no tactics registered for role %s", role)
	}
	for _, tactic := range chain {
		els, err := f.Find(scope, tactic.Query)
		if err != nil {
			return nil, err
		}
		var kept []session.Element
		for _, el := range els {
			if !el.Visible {
				continue
			}
			if tactic.Accept != nil && !tactic.Accept(el) {
				continue
			}
			kept = append(kept, el)
		}
		if len(kept) > 0 {
			return kept, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", role, ErrNotFound)
}
