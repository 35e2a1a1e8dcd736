package protocol

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for a client instance.
//
// The routing tier is addressed as a contiguous port range on one host:
// routing thread i listens on RoutingPortBase + i.
type ClientConfig struct {
	// RoutingIP is the address of the routing tier.
	RoutingIP string
	// RoutingPortBase is the first port in the routing thread range.
	RoutingPortBase uint16
	// RoutingThreads is the number of routing threads (>= 1, required).
	RoutingThreads uint32
	// Timeout is the per request deadline. A value <= 0 disables timeout
	// enforcement entirely.
	Timeout time.Duration
}

// Validate checks the configuration for completeness.
func (c *ClientConfig) Validate() error {
	if c.RoutingIP == "" {
		return fmt.Errorf("routing ip must be set")
	}
	if c.RoutingThreads < 1 {
		return fmt.Errorf("at least one routing thread is required")
	}
	return nil
}

// RoutingEndpoint returns the transport endpoint of the given routing
// thread.
func (c *ClientConfig) RoutingEndpoint(thread uint32) string {
	port := int(c.RoutingPortBase) + int(thread)
	return net.JoinHostPort(c.RoutingIP, strconv.Itoa(port))
}

// String returns a formatted string representation of the configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client")
	if c.Timeout > 0 {
		addField("Timeout", c.Timeout.String())
	} else {
		addField("Timeout", "disabled")
	}

	addSection("Routing Tier")
	addField("IP", c.RoutingIP)
	addField("Port Base", strconv.Itoa(int(c.RoutingPortBase)))
	addField("Threads", strconv.Itoa(int(c.RoutingThreads)))
	for i := uint32(0); i < c.RoutingThreads; i++ {
		addField(fmt.Sprintf("Thread %d", i), c.RoutingEndpoint(i))
	}

	return sb.String()
}
