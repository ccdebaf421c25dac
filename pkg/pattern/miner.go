// Package pattern groups the lines of a slice into Drain templates.
package pattern

import (
	"cmp"
	"slices"
	"sync"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/jaeyo/go-drain3/pkg/drain3"
)

// Template is a discovered line template.
type Template struct {
	ID      uuid.UUID
	Pattern string
	Count   int
}

// Miner discovers templates online with the Drain algorithm.
type Miner struct {
	mu    sync.Mutex
	drain *drain3.Drain
	// ids maps Drain cluster IDs to stable UUIDs.
	ids map[int64]uuid.UUID
}

// NewMiner creates a Miner with default Drain parameters.
func NewMiner() (*Miner, error) {
	d, err := drain3.NewDrain(
		drain3.WithDepth(4),
		drain3.WithSimTh(0.4),
		drain3.WithExtraDelimiter([]string{"|", "=", ","}),
	)
	if err != nil {
		return nil, errors.Errorf("create drain: %w", err)
	}
	return &Miner{
		drain: d,
		ids:   make(map[int64]uuid.UUID),
	}, nil
}

// Add feeds one line and returns the ID of the template it joined. Drain
// never moves a line between clusters, so the ID stays valid as the
// template's text generalizes.
func (m *Miner) Add(line string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cluster, _, err := m.drain.AddLogMessage(line)
	if err != nil {
		return uuid.Nil, errors.Errorf("drain add: %w", err)
	}
	if cluster == nil {
		return uuid.Nil, nil
	}
	id, ok := m.ids[cluster.ClusterId]
	if !ok {
		id = uuid.New()
		m.ids[cluster.ClusterId] = id
	}
	return id, nil
}

// Templates returns templates seen at least minCount times, most frequent first.
func (m *Miner) Templates(minCount int) []Template {
	m.mu.Lock()
	defer m.mu.Unlock()

	clusters := m.drain.GetClusters()
	templates := make([]Template, 0, len(clusters))
	for _, c := range clusters {
		id, ok := m.ids[c.ClusterId]
		if !ok || int(c.Size) < minCount {
			continue
		}
		templates = append(templates, Template{
			ID:      id,
			Pattern: c.GetTemplate(),
			Count:   int(c.Size),
		})
	}
	slices.SortFunc(templates, func(a, b Template) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Pattern, b.Pattern)
	})
	return templates
}
