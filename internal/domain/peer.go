// Package domain holds the shared types of the Lattice node.
// A Node is a remote peer in the Lattice network, identified by the
// stable URI form of its public key and endpoint.
package domain

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Node identifies a remote peer. The URI form is the canonical,
// stable serialization — it is the only thing persistence layers
// are allowed to key on.
type Node struct {
	ID   string `json:"id"`   // hex public key
	Host string `json:"host"` // IP or hostname
	Port int    `json:"port"`
}

// URI returns the canonical enode-style identifier for the peer.
// The result is deterministic for a given node and never changes
// across restarts.
func (n Node) URI() string {
	return fmt.Sprintf("enode://%s@%s", n.ID, net.JoinHostPort(n.Host, strconv.Itoa(n.Port)))
}

// Endpoint returns the host:port dial address for the peer.
func (n Node) Endpoint() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

func (n Node) String() string {
	short := n.ID
	if len(short) > 16 {
		short = short[:16]
	}
	return fmt.Sprintf("<Node %s@%s>", short, n.Endpoint())
}

// ParseNode parses an enode-style URI ("enode://id@host:port") back
// into a Node. It is the inverse of URI().
func ParseNode(uri string) (Node, error) {
	rest, ok := strings.CutPrefix(uri, "enode://")
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrInvalidNodeURI, uri)
	}
	id, addr, ok := strings.Cut(rest, "@")
	if !ok || id == "" {
		return Node{}, fmt.Errorf("%w: %q", ErrInvalidNodeURI, uri)
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %q", ErrInvalidNodeURI, uri)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Node{}, fmt.Errorf("%w: %q", ErrInvalidNodeURI, uri)
	}
	return Node{ID: id, Host: host, Port: port}, nil
}
