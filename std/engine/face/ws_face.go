package face

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// WebSocketFace carries one packet per binary WebSocket message.
type WebSocketFace struct {
	baseFace
	url  string
	conn *websocket.Conn
}

func NewWebSocketFace(url string, local bool) *WebSocketFace {
	return &WebSocketFace{
		baseFace: newBaseFace(local),
		url:      url,
	}
}

func (f *WebSocketFace) String() string {
	return fmt.Sprintf("websocket-face (%s)", f.url)
}

func (f *WebSocketFace) Open() error {
	if err := f.checkOpen(); err != nil {
		return err
	}

	c, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		return err
	}

	f.conn = c
	f.running.Store(true)

	go f.receive(c)

	return nil
}

func (f *WebSocketFace) Close() error {
	if !f.setStateClosed() {
		return errNotRunning
	}

	return f.conn.Close()
}

func (f *WebSocketFace) Send(pkt []byte) error {
	if !f.IsRunning() {
		return errNotRunning
	}

	f.sendMut.Lock()
	defer f.sendMut.Unlock()
	return f.conn.WriteMessage(websocket.BinaryMessage, pkt)
}

func (f *WebSocketFace) receive(c *websocket.Conn) {
	defer f.setStateDown()

	for f.IsRunning() {
		messageType, pkt, err := c.ReadMessage()
		if err != nil {
			if f.IsRunning() {
				f.onError(err)
			}
			return
		}

		if messageType != websocket.BinaryMessage {
			continue
		}

		f.onPkt(pkt)
	}
}
