package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Query.MaxComplexity <= 0 {
		return fmt.Errorf("query.max_complexity must be > 0 (got %d)", c.Query.MaxComplexity)
	}
	if c.Query.MaxDepth <= 0 {
		return fmt.Errorf("query.max_depth must be > 0 (got %d)", c.Query.MaxDepth)
	}
	if c.Query.IntrospectionComplexity <= 0 {
		return fmt.Errorf("query.introspection_complexity must be > 0 (got %d)", c.Query.IntrospectionComplexity)
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be > 0 (got %d)", c.Cache.Capacity)
	}
	if c.Cache.NumShards <= 0 {
		return fmt.Errorf("cache.num_shards must be > 0 (got %d)", c.Cache.NumShards)
	}
	if c.Cache.TTLModerate <= 0 || c.Cache.TTLHeavy <= 0 || c.Cache.TTLComprehensive <= 0 {
		return fmt.Errorf("cache tier TTLs must be > 0")
	}
	if c.Cache.TTLModerate > c.Cache.TTLHeavy || c.Cache.TTLHeavy > c.Cache.TTLComprehensive {
		return fmt.Errorf("cache tier TTLs must be ordered: moderate <= heavy <= comprehensive")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database.max_conns (%d) must be >= min_conns (%d)", c.Database.MaxConns, c.Database.MinConns)
	}
	return nil
}
