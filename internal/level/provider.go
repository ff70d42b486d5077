package level

import (
	"fmt"

	"github.com/trijam/forcerun/internal/data"
)

// Provider resolves the configuration for a level number. Levels without an
// authored entry get a copy of the default entry.
type Provider struct {
	table *data.LevelTable
}

func NewProvider(table *data.LevelTable) *Provider {
	return &Provider{table: table}
}

// GetLevelData returns a copy the caller may modify.
func (p *Provider) GetLevelData(n int) data.LevelData {
	if l := p.table.Get(n); l != nil {
		return l.Clone()
	}
	ld := p.table.Default()
	ld.LevelNumber = n
	ld.Name = fmt.Sprintf("Level %d", n)
	return ld
}
