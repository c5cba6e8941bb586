package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/gregd453/BVSquares/internal/comm"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

// TopicSquareEvents carries grid and game change events for the socket
// service to fan out to subscribed web clients.
const TopicSquareEvents = "squares.events"

type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// PublishSquareEvent announces a square change. Publishing is best
// effort: the API response already carries the authoritative state.
func (b *Broker) PublishSquareEvent(sq *models.Square) {
	event := comm.SquareEvent{
		GameID:            sq.GameID,
		SquareID:          sq.ID,
		Row:               sq.Row,
		Col:               sq.Col,
		Status:            sq.Status,
		PlayerID:          sq.PlayerID,
		PlayerDisplayName: sq.PlayerDisplayName,
		Timestamp:         time.Now().UTC(),
	}
	b.publish("square-update", event)
}

// PublishGameEvent announces a game level change.
func (b *Broker) PublishGameEvent(game *models.Game) {
	event := comm.GameEvent{
		GameID:     game.ID,
		Status:     game.Status,
		RowNumbers: game.RowNumbers,
		ColNumbers: game.ColNumbers,
		Timestamp:  time.Now().UTC(),
	}
	b.publish("game-update", event)
}

func (b *Broker) publish(msgType string, event interface{}) {
	if b == nil || b.Conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("unable to marshal %s event: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type: msgType,
		Data: data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(TopicSquareEvents, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", TopicSquareEvents, err)
	}
}
