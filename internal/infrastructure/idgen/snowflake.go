// Package idgen hands out numeric identity ids.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Snowflake implements ports.IDGenerator on top of a snowflake node. Each
// running instance must be configured with a distinct node number.
type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return &Snowflake{node: n}, nil
}

func (s *Snowflake) NextID() int64 {
	return s.node.Generate().Int64()
}
