// Package kvstore is the backing store: named binary blobs that survive
// restarts. The domain store keeps one JSON document per collection here.
//
// Drivers:
//
//   - sqlite   (default) embedded file database, modernc.org/sqlite
//   - postgres same schema over jackc/pgx
//   - redis    one redis key per name, with a prefix
//   - memory   process-local map, nothing survives the process
//
// Get returns (nil, nil) for an absent key. Writes to different keys are
// independent; SetMany on SQL drivers writes all keys in one transaction.
package kvstore
