package slug

import "fmt"

// SlugCollisionError reports two distinct sources deriving the same slug.
// Collisions are structural: the run must fail rather than auto-disambiguate.
type SlugCollisionError struct {
	Slug    string
	First   string // source path that claimed the slug first
	Second  string // source path whose claim collided
}

func (e *SlugCollisionError) Error() string {
	return fmt.Sprintf("slug %q derived for both %s and %s", e.Slug, e.First, e.Second)
}

// Registry tracks slug claims across one run. Results are provisional until
// every unit in the corpus has been resolved.
type Registry struct {
	claims map[string]string // slug -> source path
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{claims: make(map[string]string)}
}

// Claim records source as the owner of slug. A second claim for the same
// slug by a different source fails with SlugCollisionError naming both.
func (r *Registry) Claim(slug, source string) error {
	if prev, taken := r.claims[slug]; taken {
		return &SlugCollisionError{Slug: slug, First: prev, Second: source}
	}
	r.claims[slug] = source
	return nil
}

// Len returns the number of claimed slugs.
func (r *Registry) Len() int { return len(r.claims) }
