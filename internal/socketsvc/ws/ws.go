package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/gregd453/BVSquares/internal/comm"
)

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	roomMap sync.Map // to keep track of socketId with subscribed gameId
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles a message from a web client. Clients only ever
// subscribe and unsubscribe; all mutations go through the REST API.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "subscribe-game":
		s.handleSubscribe(socketId, message)
	case "unsubscribe-game":
		s.roomMap.Delete(socketId)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleSubscribe(socketId string, msg *comm.WSMessage) {
	var payload comm.GameSubscription
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("malformed subscribe-game payload: %s", err)
		return
	}
	if payload.GameID == "" {
		log.Error("subscribe-game payload missing game_id")
		return
	}

	s.roomMap.Store(socketId, payload.GameID)
	log.Infof("socket %s subscribed to game %s", socketId, payload.GameID)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

// GetGameSockets returns the sockets currently subscribed to a game.
func (s *Ws) GetGameSockets(gameId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == gameId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
