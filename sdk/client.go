package sdk

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/zelana-network/gzel/core/types"
	"github.com/zelana-network/gzel/p2p"
	"github.com/zelana-network/gzel/params"
)

var (
	// ErrHandshakeTimeout is returned when the server does not answer a
	// ClientHello in time.
	ErrHandshakeTimeout = errors.New("sdk: handshake timed out")

	// ErrSessionReset is returned by Dial when the server answers the
	// ClientHello with a reset sentinel instead of a ServerHello. A reset
	// received after the handshake is reported by AwaitReset instead.
	ErrSessionReset = errors.New("sdk: session reset by server")
)

// handshakeTimeout bounds the wait for a ServerHello. UDP gives no signal on
// loss, so the dial retries a few times before giving up.
const (
	handshakeTimeout  = 2 * time.Second
	handshakeAttempts = 3
)

// Client is an encrypted UDP session with a sequencer. It is not safe for
// concurrent use.
type Client struct {
	conn *net.UDPConn
	keys *p2p.SessionKeys
	buf  []byte
}

// Dial connects to a sequencer address ("host:port"), performs the X25519
// handshake and derives the session keys.
func Dial(addr string) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	client := &Client{conn: conn, buf: make([]byte, params.MaxDatagramSize)}
	if err := client.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) handshake() error {
	ephemeral, err := p2p.GenerateEphemeralKey(nil)
	if err != nil {
		return err
	}
	hello := p2p.AppendHello(nil, p2p.KindClientHello, ephemeral.Public())

	for attempt := 0; attempt < handshakeAttempts; attempt++ {
		if _, err := c.conn.Write(hello); err != nil {
			return fmt.Errorf("send client hello: %w", err)
		}
		c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
		n, err := c.conn.Read(c.buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			continue // timeout; retry
		}
		pkt, err := p2p.ParsePacket(c.buf[:n])
		if err != nil {
			continue // stray datagram
		}
		switch pkt.Kind {
		case p2p.KindServerHello:
			shared, err := ephemeral.SharedSecret(pkt.PublicKey)
			if err != nil {
				return err
			}
			keys, err := p2p.DeriveSessionKeys(shared, ephemeral.Public(), pkt.PublicKey, true)
			if err != nil {
				return err
			}
			c.keys = keys
			c.conn.SetReadDeadline(time.Time{})
			return nil
		case p2p.KindReset:
			return ErrSessionReset
		}
	}
	return ErrHandshakeTimeout
}

// SendTransaction seals a transaction under the session keys and sends it.
func (c *Client) SendTransaction(tx types.L2Transaction) error {
	if c.keys == nil {
		return errors.New("sdk: client not connected")
	}
	nonce, ciphertext := c.keys.Seal(tx.EncodeToBytes())
	frame := p2p.AppendAppData(c.buf[:0], &nonce, ciphertext)
	if len(frame) > params.MaxDatagramSize {
		return fmt.Errorf("sdk: transaction frame %d bytes exceeds MTU", len(frame))
	}
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("send transaction: %w", err)
	}
	return nil
}

// AwaitReset drains one inbound datagram within the timeout and reports
// whether it was a reset sentinel. Useful after sequencer restarts, where
// AppData sent into a dead session provokes a Reset.
func (c *Client) AwaitReset(timeout time.Duration) bool {
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})

	n, err := c.conn.Read(c.buf)
	if err != nil {
		return false
	}
	pkt, err := p2p.ParsePacket(c.buf[:n])
	return err == nil && pkt.Kind == p2p.KindReset
}

// LocalAddr returns the client's bound UDP address.
func (c *Client) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// Close tears down the socket. The session keys are discarded; a new Dial
// performs a fresh handshake.
func (c *Client) Close() error { return c.conn.Close() }
