// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// MetricsCachePrefix is the prefix used for cached dashboard metrics.
const MetricsCachePrefix = "metrics:"

// MetricsCacheTTL keeps dashboard metrics slightly stale rather than
// recomputing the aggregation on every request.
const MetricsCacheTTL = 5 * time.Minute
