package conf

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

//Config is a representation of command line config parameters
type Config struct {
	Op        Operation
	Backing   BackingRegion
	Path      string
	BlockSize Capacity
	Limit     Capacity
	DevStart  Capacity
	Offset    Capacity
	Count     Capacity
}

//String generates human-readable prose describing a configuration
func (cfg *Config) String() string {
	limit := "an unbounded"
	if cfg.Limit > 0 {
		limit = "a " + humanize.IBytes(uint64(cfg.Limit))
	}

	extent := ""
	if cfg.Backing == BackDevice && cfg.DevStart > 0 {
		extent = fmt.Sprintf(" starting %s into the device", humanize.IBytes(uint64(cfg.DevStart)))
	}

	return fmt.Sprintf("Performing %q on %s %s backed region at %q%s using %s blocks.",
		cfg.Op, limit, cfg.Backing, cfg.Path, extent,
		humanize.IBytes(uint64(cfg.BlockSize)),
	)
}
