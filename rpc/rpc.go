// Package rpc exposes a running player over net/rpc, so its controls can be
// set and its status watched from another process.
package rpc

import (
	"fmt"
	"net"
	"net/rpc"
	"sync"

	"github.com/zynmi/mutseq"
	"github.com/zynmi/mutseq/player"
)

type (
	// Control holds what the server needs from the model: the broker to
	// the player and the last status.
	Control struct {
		broker *player.Broker

		mu     sync.Mutex
		status player.Status
	}

	// service is the net/rpc receiver; its methods are the remote API.
	service struct {
		control *Control
	}

	ParamArgs struct {
		Name  string
		Value float32
	}

	Client struct {
		client *rpc.Client
	}
)

// DefaultAddress is where mutseq-play listens when asked to.
const DefaultAddress = "127.0.0.1:31337"

// Listen serves the controls of the player behind broker on address. The
// server runs until the listener is closed.
func Listen(address string, broker *player.Broker) (*Control, net.Listener, error) {
	c := &Control{broker: broker}
	server := rpc.NewServer()
	if err := server.RegisterName("Control", &service{control: c}); err != nil {
		return nil, nil, fmt.Errorf("rpc.Register failed: %v", err)
	}
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, nil, fmt.Errorf("net.Listen failed: %v", err)
	}
	go server.Accept(l)
	return c, l, nil
}

// SetParam sets a control by name, e.g. "swing" or "step3.ratchet".
func (s *service) SetParam(args ParamArgs, reply *bool) error {
	id, err := mutseq.ParamByName(args.Name)
	if err != nil {
		return err
	}
	*reply = s.control.broker.SetParam(id, args.Value)
	return nil
}

// Status returns the last status reported by the player.
func (s *service) Status(_ int, reply *player.Status) error {
	s.control.mu.Lock()
	*reply = s.control.status
	s.control.mu.Unlock()
	return nil
}

// UpdateStatus is called by the model whenever the player reports.
func (c *Control) UpdateStatus(s player.Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func Dial(address string) (*Client, error) {
	client, err := rpc.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("rpc.Dial failed: %v", err)
	}
	return &Client{client: client}, nil
}

// SetParam returns false if the player's message queue was full.
func (c *Client) SetParam(name string, value float32) (bool, error) {
	var ok bool
	if err := c.client.Call("Control.SetParam", ParamArgs{Name: name, Value: value}, &ok); err != nil {
		return false, fmt.Errorf("Control.SetParam failed: %v", err)
	}
	return ok, nil
}

func (c *Client) Status() (player.Status, error) {
	var s player.Status
	if err := c.client.Call("Control.Status", 0, &s); err != nil {
		return player.Status{}, fmt.Errorf("Control.Status failed: %v", err)
	}
	return s, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
