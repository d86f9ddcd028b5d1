package cost

import (
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/netscore/pkg/registry"
)

// ID identifies one published version of a package.
type ID = registry.ID

// NewID returns the deterministic ID for name@version.
func NewID(name, version string) ID { return registry.NewID(name, version) }

// Status is the lifecycle state of a cost record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// bytesExp scales sizes in bytes to cost units (megabytes).
const bytesExp = -6

// Record is the memoized cost of one package version.
//
// TotalCost is meaningful only when Status is StatusCompleted, in which
// case TotalCost >= StandaloneCost.
type Record struct {
	ID             ID                `json:"id"`
	Name           string            `json:"name,omitempty"`
	Version        string            `json:"version,omitempty"`
	StandaloneCost decimal.Decimal   `json:"standalone_cost"`
	TotalCost      decimal.Decimal   `json:"total_cost"`
	Dependencies   map[string]string `json:"dependencies,omitempty"`

	// Resolved lists the versions the dependencies resolved to, in
	// dependency name order. Unresolved dependencies are absent.
	Resolved []Ref `json:"resolved,omitempty"`

	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref is a dependency edge: the ID it resolved to together with the name
// and version, so the edge can be looked up again from a cold registry.
type Ref struct {
	ID      ID     `json:"id"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Label returns "name@version", or the ID when the name is unknown.
func (r Ref) Label() string {
	if r.Name == "" {
		return r.ID.String()
	}
	return r.Name + "@" + r.Version
}

// Entry is the exposed view of a record.
type Entry struct {
	StandaloneCost float64 `json:"standaloneCost"`
	TotalCost      float64 `json:"totalCost"`
	Failed         bool    `json:"failed,omitempty"`
}

// Entry converts r to its exposed form.
func (r *Record) Entry() Entry {
	if r.Status == StatusFailed {
		return Entry{Failed: true}
	}
	return Entry{
		StandaloneCost: r.StandaloneCost.InexactFloat64(),
		TotalCost:      r.TotalCost.InexactFloat64(),
	}
}

// Label returns "name@version", or the ID when the name is unknown.
func (r *Record) Label() string {
	if r.Name == "" {
		return r.ID.String()
	}
	return r.Name + "@" + r.Version
}

func (r *Record) clone() *Record {
	cp := *r
	cp.Dependencies = maps.Clone(r.Dependencies)
	cp.Resolved = slices.Clone(r.Resolved)
	return &cp
}

// sizeToCost converts bytes to megabytes exactly.
func sizeToCost(bytes int64) decimal.Decimal {
	return decimal.New(bytes, bytesExp)
}
