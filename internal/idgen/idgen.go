// Package idgen produces identifiers: time-ordered snowflake ids for users
// and random uuids for log entries.
package idgen

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Generator hands out user ids.
type Generator interface {
	NewID() string
}

// Snowflake generates ids from one snowflake node. If the node could not be
// created it falls back to KSUIDs, which are also time-ordered.
type Snowflake struct {
	once   sync.Once
	nodeID int64
	node   *snowflake.Node
}

// NodeFromEnv reads the node id from SNOWFLAKE_NODE, defaulting to 1 when
// it is unset or not a number.
func NodeFromEnv() int64 {
	v := os.Getenv("SNOWFLAKE_NODE")
	if v == "" {
		return 1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 1
	}
	return n
}

func NewSnowflake(nodeID int64) *Snowflake {
	return &Snowflake{nodeID: nodeID}
}

func (g *Snowflake) NewID() string {
	g.once.Do(func() {
		n, err := snowflake.NewNode(g.nodeID)
		if err == nil {
			g.node = n
		}
	})
	if g.node == nil {
		return ksuid.New().String()
	}
	return g.node.Generate().String()
}

// NewUUID returns a random v4 uuid string.
func NewUUID() string {
	return uuid.NewString()
}
