// network/connection.go
package network

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	headerSize     = 4
	MaxPayloadSize = 0xFFFF

	sendQueueSize = 64
	writeWait     = 5 * time.Second
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrConnClosed      = errors.New("connection closed")
	ErrSendQueueFull   = errors.New("send queue full")
)

type Packet struct {
	MsgID  uint16
	Data   []byte
	Length uint16
}

type Connection interface {
	Send(msgID uint16, data []byte) error
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
	ReadPacket() (*Packet, error)
}

// Encode frames data: 2 bytes message id, 2 bytes length, payload.
func Encode(msgID uint16, data []byte) ([]byte, error) {
	if len(data) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	packet := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[headerSize:], data)
	return packet, nil
}

// Decode parses one frame produced by Encode.
func Decode(data []byte) (*Packet, error) {
	if len(data) < headerSize {
		return nil, io.ErrShortBuffer
	}
	msgID := binary.BigEndian.Uint16(data[0:2])
	length := binary.BigEndian.Uint16(data[2:4])
	if len(data) < headerSize+int(length) {
		return nil, io.ErrShortBuffer
	}
	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   data[headerSize : headerSize+int(length)],
	}, nil
}

// WSConnection queues outbound frames and writes them from its own
// goroutine, so Send never blocks on the socket.
type WSConnection struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	heartbeat time.Duration
	hbMutex   sync.Mutex
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	packet, err := Encode(msgID, data)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- packet:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		// A peer that stops reading is dropped rather than stalling senders.
		c.Close()
		return ErrSendQueueFull
	}
}

func (c *WSConnection) writeLoop() {
	for {
		select {
		case packet := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, packet); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	packet, err := Decode(data)
	if err != nil {
		return nil, err
	}
	c.extendDeadline()
	return packet, nil
}

func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.hbMutex.Lock()
	c.heartbeat = interval
	c.hbMutex.Unlock()
	c.extendDeadline()
}

func (c *WSConnection) extendDeadline() {
	c.hbMutex.Lock()
	interval := c.heartbeat
	c.hbMutex.Unlock()
	if interval > 0 {
		c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	}
}

func (c *WSConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
