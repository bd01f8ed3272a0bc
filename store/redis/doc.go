// Package redis implements the hookq store on Redis for high-throughput
// deployments. Each hook lives in a Hash, due hooks are indexed in a
// Sorted Set scored by their run_after time, and per-status Sets back
// the backpressure count.
//
// Usage:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	s := redisstore.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis
