package api

import (
	"math/big"
	"net/http"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventMessage is one committed factory event as sent to websocket clients.
type EventMessage struct {
	Index       uint                   `json:"index"`
	BlockNumber uint64                 `json:"blockNumber"`
	TxHash      string                 `json:"txHash"`
	Address     string                 `json:"address"`
	Event       string                 `json:"event"`
	Args        map[string]interface{} `json:"args"`
}

func NewEventMessage(l *types.Log) EventMessage {
	msg := EventMessage{
		Index:       l.Index,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash.Hex(),
		Address:     l.Address.Hex(),
	}
	name, fields, err := model.DecodeEvent(l)
	if err != nil {
		msg.Event = "Unknown"
		return msg
	}
	msg.Event = name
	msg.Args = make(map[string]interface{}, len(fields))
	for key, value := range fields {
		msg.Args[key] = jsonValue(value)
	}
	return msg
}

// jsonValue renders ABI values the way clients read them: indexed addresses arrive as
// topics and are cut back to 20 bytes.
func jsonValue(value interface{}) interface{} {
	switch v := value.(type) {
	case common.Hash:
		return common.BytesToAddress(v[:]).Hex()
	case [32]byte:
		return model.ReferralCode(v).Hex()
	case *big.Int:
		return v.String()
	default:
		return v
	}
}

// streamEvents replays committed events from ?from= and then follows new ones. Without
// from it starts at the first event committed after the request arrived. The hub drops
// events for a full subscriber, so a gap in the live sequence is filled from the
// committed log.
func (s *Server) streamEvents(c *gin.Context) {
	next, ok := parseFrom(c)
	if !ok {
		next = s.factory.LogCount()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	logs, cancel := s.factory.Events().Subscribe()
	defer cancel()

	catchUp := func() error {
		for _, l := range s.factory.Logs(next) {
			l := l
			if err := writeEvent(conn, &l); err != nil {
				return err
			}
			next = l.Index + 1
		}
		return nil
	}
	if err := catchUp(); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case l, ok := <-logs:
			if !ok {
				return
			}
			if l.Index < next {
				continue
			}
			if l.Index > next {
				if err := catchUp(); err != nil {
					return
				}
				continue
			}
			if err := writeEvent(conn, l); err != nil {
				return
			}
			next = l.Index + 1
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, l *types.Log) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(NewEventMessage(l)); err != nil {
		logrus.Debugf("websocket write: %v", err)
		return err
	}
	return nil
}
