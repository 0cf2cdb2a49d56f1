package controller

import (
	"encoding/json"
	"log"

	"github.com/gofiber/websocket/v2"

	"github.com/bomaolad/team-sync-be/realtime"
)

// EventsController bridges websocket connections and the fan-out hub.
type EventsController struct {
	Hub    *realtime.Hub
	Logger *log.Logger
}

func NewEventsController(hub *realtime.Hub, logger *log.Logger) *EventsController {
	return &EventsController{Hub: hub, Logger: logger}
}

type wsInbound struct {
	Event string `json:"event"`
	Data  uint   `json:"data"`
}

// HandleEventsWS serves one connection. Clients send join/leave messages to
// manage their scope subscriptions and receive domain events as pushes. All
// subscriptions are dropped when the connection closes.
func (ec *EventsController) HandleEventsWS(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		c.Close()
		return
	}

	client := realtime.NewClient(userID)
	ec.Hub.Register(client)
	defer func() {
		ec.Hub.Unregister(client)
		c.Close()
	}()

	// Single writer goroutine so pushes and acks never interleave on the wire
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	for {
		var input wsInbound
		if err := c.ReadJSON(&input); err != nil {
			break
		}

		switch input.Event {
		case "joinProject":
			ec.Hub.Subscribe(client.ID, realtime.ProjectScope(input.Data))
			ec.ack(client, "joinedProject", input.Data)
		case "leaveProject":
			ec.Hub.Unsubscribe(client.ID, realtime.ProjectScope(input.Data))
			ec.ack(client, "leftProject", input.Data)
		case "joinTeam":
			ec.Hub.Subscribe(client.ID, realtime.TeamScope(input.Data))
			ec.ack(client, "joinedTeam", input.Data)
		case "leaveTeam":
			ec.Hub.Unsubscribe(client.ID, realtime.TeamScope(input.Data))
			ec.ack(client, "leftTeam", input.Data)
		default:
			ec.Logger.Printf("Unknown ws event %q from user %d", input.Event, userID)
		}
	}
}

// ack pushes a confirmation through the client's send queue.
func (ec *EventsController) ack(client *realtime.Client, event string, data uint) {
	msg, err := json.Marshal(realtime.Event{Name: event, Data: data})
	if err != nil {
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}
