package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/replenish/pkg/domain/entities"
	"github.com/vsinha/replenish/pkg/infrastructure/events"
)

// EventLog is the read side of the event store
type EventLog interface {
	ReadEvents(streamID string, fromVersion int) ([]events.Event, error)
	ReadPage(fromPosition int) ([]events.Event, int)
}

// EventHandler serves the retained domain events
type EventHandler struct {
	log EventLog
}

func NewEventHandler(log EventLog) *EventHandler {
	return &EventHandler{log: log}
}

// EventPage is one read of the global event log
type EventPage struct {
	Events       []events.Event `json:"events"`
	NextPosition int            `json:"next_position"`
}

// List returns retained events from the from position; clients poll with next_position.
// Events evicted before a poll are skipped.
func (h *EventHandler) List(c *gin.Context) {
	from, err := queryInt(c, "from", 0)
	if err != nil {
		HandleError(c, err)
		return
	}

	list, next := h.log.ReadPage(from)
	Success(c, EventPage{Events: list, NextPosition: next})
}

// Stream returns a SKU's events from the from_version query parameter
func (h *EventHandler) Stream(c *gin.Context) {
	from, err := queryInt(c, "from_version", 1)
	if err != nil {
		HandleError(c, err)
		return
	}

	list, err := h.log.ReadEvents(string(skuParam(c)), from)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, list)
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, entities.NewValidationError(name, "must be a non-negative integer, got %q", raw)
	}
	return v, nil
}
