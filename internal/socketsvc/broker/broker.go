package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/gregd453/BVSquares/internal/comm"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetGameSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetGameSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetGameSockets: fncGetGameSockets,
	}
}

// Subscribe consumes change events published by the squares service.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// handleMessages receives an event from the squares service and fans
// it out to every socket watching the affected game.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "square-update":
		var event comm.SquareEvent
		if err := json.Unmarshal(message.Data, &event); err != nil {
			log.Errorf("Error decoding square event: %s", err)
			return
		}
		b.broadcastToGame(event.GameID, message)
	case "game-update":
		var event comm.GameEvent
		if err := json.Unmarshal(message.Data, &event); err != nil {
			log.Errorf("Error decoding game event: %s", err)
			return
		}
		b.broadcastToGame(event.GameID, message)
	default:
		log.Error("Unknown message")
	}
}

func (b *Broker) broadcastToGame(gameId string, m *comm.WSMessage) {
	sockets, ok := b.GetGameSockets(gameId)
	if !ok {
		return
	}

	for _, socketId := range sockets {
		if conn, ok := b.GetConnection(socketId); ok {
			if err := conn.WriteJSON(m); err != nil {
				log.Println(err)
			}
		}
	}
}
