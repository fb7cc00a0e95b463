// Package kinds names the entity types that receive identifiers.
package kinds

import (
	"regexp"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Entity kinds of the application.
const (
	Profile       = "profile"
	Todo          = "todo"
	Attachment    = "attachment"
	Secret        = "secret"
	FriendRequest = "friend_request"
	Note          = "note"
	Review        = "review"
	Food          = "food"
	Pokemon       = "pokemon"
)

// Defaults lists every kind the application creates.
func Defaults() []string {
	return []string{Profile, Todo, Attachment, Secret, FriendRequest, Note, Review, Food, Pokemon}
}

// ErrInvalidName is returned for names that cannot be used as a kind.
var ErrInvalidName = errors.New("invalid kind name")

var nameRE = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Validate checks that name is usable as a key segment.
func Validate(name string) error {
	if !nameRE.MatchString(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

// Registry answers whether a kind may be minted. An empty registry allows
// every valid name.
type Registry struct {
	allowed map[string]struct{}
}

// NewRegistry builds a registry from names, dropping duplicates.
func NewRegistry(names []string) (*Registry, error) {
	r := &Registry{allowed: make(map[string]struct{}, len(names))}
	for _, n := range lo.Uniq(names) {
		if err := Validate(n); err != nil {
			return nil, err
		}
		r.allowed[n] = struct{}{}
	}
	return r, nil
}

// Allowed reports whether name is valid and permitted.
func (r *Registry) Allowed(name string) bool {
	if Validate(name) != nil {
		return false
	}
	if r == nil || len(r.allowed) == 0 {
		return true
	}
	_, ok := r.allowed[name]
	return ok
}

// Names returns the configured kinds in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := lo.Keys(r.allowed)
	sort.Strings(names)
	return names
}
