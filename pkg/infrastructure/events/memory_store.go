package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vsinha/replenish/pkg/logging"
)

// InMemoryEventStore keeps events in process. With a retention limit only the newest
// events are kept; positions and stream versions stay absolute after older events drop.
type InMemoryEventStore struct {
	streams     map[string][]Event
	versions    map[string]int
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	dropped     int
	retention   int
	logger      *zap.Logger
}

// NewInMemoryEventStore creates a store that keeps every event
func NewInMemoryEventStore(logger *zap.Logger) *InMemoryEventStore {
	return NewBoundedEventStore(0, logger)
}

// NewBoundedEventStore creates a store keeping at most retention events; zero keeps all
func NewBoundedEventStore(retention int, logger *zap.Logger) *InMemoryEventStore {
	if retention < 0 {
		retention = 0
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		versions:    make(map[string]int),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		retention:   retention,
		logger:      logging.OrNop(logger),
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.versions[streamID]++
	versioned := BaseEvent{
		EventID:      event.ID(),
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: s.versions[streamID],
	}

	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)
	s.evict()

	if handlers := s.subscribers[versioned.EventType]; len(handlers) > 0 {
		go s.notify(append([]EventHandler(nil), handlers...), versioned)
	}

	return nil
}

// evict drops the oldest events beyond the retention limit; callers hold the write lock
func (s *InMemoryEventStore) evict() {
	if s.retention == 0 {
		return
	}
	for len(s.allEvents) > s.retention {
		oldest := s.allEvents[0]
		s.allEvents[0] = nil
		s.allEvents = s.allEvents[1:]
		s.dropped++

		stream := s.streams[oldest.StreamID()]
		if len(stream) <= 1 {
			delete(s.streams, oldest.StreamID())
			continue
		}
		stream[0] = nil
		s.streams[oldest.StreamID()] = stream[1:]
	}
}

// ReadEvents returns the retained events of a stream with version at least fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	result := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Version() >= fromVersion {
			result = append(result, e)
		}
	}
	return result, nil
}

// ReadAllEvents returns retained events from an absolute position
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	events, _ := s.ReadPage(fromPosition)
	return events, nil
}

// ReadPage returns retained events from an absolute position together with the
// position to resume from, read under one lock
func (s *InMemoryEventStore) ReadPage(fromPosition int) ([]Event, int) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	next := s.dropped + len(s.allEvents)
	index := fromPosition - s.dropped
	if index < 0 {
		index = 0
	}
	if index >= len(s.allEvents) {
		return []Event{}, next
	}
	return append([]Event(nil), s.allEvents[index:]...), next
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}

	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}

	return nil
}

func (s *InMemoryEventStore) notify(handlers []EventHandler, event Event) {
	for _, handler := range handlers {
		if !handler.CanHandle(event.Type()) {
			continue
		}
		if err := handler.Handle(event); err != nil {
			s.logger.Warn("Event handler failed",
				zap.String("type", event.Type()),
				zap.String("stream_id", event.StreamID()),
				zap.Error(err),
			)
		}
	}
}
