package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer initializes and returns a new Socket.IO server. Clients
// join a room named by sessionId and refetch the session document whenever
// a "sessionUpdated" event lands.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, sessionID string) {
		if sessionID == "" {
			log.Println("❌ Invalid sessionId in join request")
			return
		}
		log.Printf("👥 Socket %s joined session %s\n", c.ID(), sessionID)
		c.Join(sessionID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, sessionID string) {
		c.Leave(sessionID)
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", reason)
	})

	return server
}

// Broadcaster fans "session updated" events out to a session's room. It
// satisfies the services.Notifier interface.
type Broadcaster struct {
	Server *socketio.Server
}

// NotifySessionUpdated tells every subscriber in the session room to
// refetch. Delivery is at-least-once; the payload is only a hint.
func (b *Broadcaster) NotifySessionUpdated(sessionID string) {
	b.Server.BroadcastToRoom("/", sessionID, "sessionUpdated", map[string]string{"sessionId": sessionID})
}
