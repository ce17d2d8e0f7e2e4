package shared

// Page describes an offset window over a result set
type Page struct {
	Skip  int
	Limit int
}

const (
	// DefaultPageLimit is used when the caller supplies no limit
	DefaultPageLimit = 100
	// MaxPageLimit caps a single page
	MaxPageLimit = 1000
)

// DefaultPage returns the first page with the default limit
func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultPageLimit}
}

// Normalize clamps the page into the allowed window
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
