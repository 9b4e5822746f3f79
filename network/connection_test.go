package network

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestEncodeDecode(t *testing.T) {
	payload := []byte(`{"rowsCleared":2}`)
	frame, err := Encode(MsgTypeDrop, payload)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(frame) != 4+len(payload) {
		t.Fatalf("Expected frame length %d, got %d", 4+len(payload), len(frame))
	}

	packet, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if packet.MsgID != MsgTypeDrop || int(packet.Length) != len(payload) || !bytes.Equal(packet.Data, payload) {
		t.Errorf("Unexpected packet %+v", packet)
	}
}

func TestDecode_Short(t *testing.T) {
	if _, err := Decode([]byte{0, 1}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated header, got %v", err)
	}
	if _, err := Decode([]byte{0, 1, 0, 9, 'x'}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated payload, got %v", err)
	}
}

func TestEncode_TooLarge(t *testing.T) {
	if _, err := Encode(MsgTypeDrop, make([]byte, MaxPayloadSize+1)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestMsgName(t *testing.T) {
	if MsgName(MsgTypeOtherDropped) != "otherDropped" {
		t.Errorf("Unexpected name %q", MsgName(MsgTypeOtherDropped))
	}
	if MsgName(9999) != "unknown" {
		t.Errorf("Expected unknown, got %q", MsgName(9999))
	}
}

func TestWSConnection_SendAndRead(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan *Packet, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewWSConnection(ws)
		defer conn.Close()
		packet, err := conn.ReadPacket()
		if err != nil {
			return
		}
		received <- packet
		conn.Send(MsgTypeThisWin, []byte(`{}`))
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer client.Close()

	frame, _ := Encode(MsgTypeLost, []byte(`{}`))
	if err := client.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	select {
	case packet := <-received:
		if packet.MsgID != MsgTypeLost {
			t.Errorf("Expected lost, got %s", MsgName(packet.MsgID))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Server did not receive the packet")
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	packet, err := Decode(data)
	if err != nil || packet.MsgID != MsgTypeThisWin {
		t.Errorf("Expected thisWin, got %+v (err %v)", packet, err)
	}
}
