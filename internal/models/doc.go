// Package models defines the platform's persisted record types: users, the
// lab catalog, per-user progress, achievements and their per-user unlocks,
// the CTF challenge catalog with per-user solves and scores, and the
// security log. All types are JSON-serializable and are stored as whole
// collections by the domain store.
package models
