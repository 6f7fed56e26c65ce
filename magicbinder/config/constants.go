package config

import "time"

const (
	DefaultQueryTimeout = 30 * time.Second
	SearchTimeout       = 10 * time.Second
	BatchQueryTimeout   = 2 * time.Minute

	DefaultPageSize = 20
	MaxPageSize     = 100

	OwnershipCacheSize     = 10000
	SearchSessionCacheSize = 1024

	ImportBatchSize = 500
	ImportWorkers   = 4
)
