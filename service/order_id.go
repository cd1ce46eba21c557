package service

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// OrderIDGenerator produces short, time-ordered order ids that do not collide across concurrent checkouts
type OrderIDGenerator interface {
	NewOrderID() string
}

// SnowflakeOrderIDs renders snowflake ids in uppercase base36, e.g. "2F4K9XQ1ZB0W"
type SnowflakeOrderIDs struct {
	node *snowflake.Node
}

// NewSnowflakeOrderIDs creates a generator for node (0-1023). Each running instance needs its own node.
func NewSnowflakeOrderIDs(node int64) (*SnowflakeOrderIDs, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to create order id node %d: %w", node, err)
	}
	return &SnowflakeOrderIDs{node: n}, nil
}

func (g *SnowflakeOrderIDs) NewOrderID() string {
	return strings.ToUpper(g.node.Generate().Base36())
}
