package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Hierarchy constraints
	MinQueryDepth     int
	MaxQueryDepth     int
	DefaultQueryDepth int

	// Metadata constraints
	MaxMetaKeys       int
	MaxMetaKeyLength  int
	MaxMetaValueBytes int

	// Listing limits
	MaxNodesPerQuery int
	DefaultPageSize  int
	MaxPageSize      int

	// Sharing constraints
	MaxGrantsPerNode int

	// Query defaults
	IncludeChildrenDefault bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Hierarchy constraints
		MinQueryDepth:     1,
		MaxQueryDepth:     20,
		DefaultQueryDepth: 10,

		// Metadata constraints
		MaxMetaKeys:       50,
		MaxMetaKeyLength:  100,
		MaxMetaValueBytes: 10000,

		// Listing limits
		MaxNodesPerQuery: 1000,
		DefaultPageSize:  20,
		MaxPageSize:      100,

		// Sharing constraints
		MaxGrantsPerNode: 100,

		// Query defaults
		IncludeChildrenDefault: false,
	}
}
