package pubsub

import (
	"sort"
	"sync"
)

// store keeps the subscriptions in memory, indexed by id and by topic.
type store struct {
	lock        *sync.RWMutex
	subsById    map[string]Subscription
	subsByTopic map[string]map[string]struct{}
}

func newStore() *store {
	return &store{
		lock:        &sync.RWMutex{},
		subsById:    make(map[string]Subscription),
		subsByTopic: make(map[string]map[string]struct{}),
	}
}

func (s *store) add(sub Subscription) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.subsById[sub.ID] = sub
	if _, ok := s.subsByTopic[sub.Event]; !ok {
		s.subsByTopic[sub.Event] = make(map[string]struct{})
	}
	s.subsByTopic[sub.Event][sub.ID] = struct{}{}
}

func (s *store) remove(id string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	sub, ok := s.subsById[id]
	if !ok {
		return false
	}
	delete(s.subsById, id)
	delete(s.subsByTopic[sub.Event], id)
	if len(s.subsByTopic[sub.Event]) <= 0 {
		delete(s.subsByTopic, sub.Event)
	}
	return true
}

// get returns the subscriptions for the given topic sorted by id, or all of
// them if the topic is unspecified.
func (s *store) get(topic string, all bool) subscriptions {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subs := make(subscriptions, 0)
	if all {
		for _, sub := range s.subsById {
			subs = append(subs, sub)
		}
	} else {
		for id := range s.subsByTopic[topic] {
			subs = append(subs, s.subsById[id])
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs
}

func (s *store) clear() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.subsById = make(map[string]Subscription)
	s.subsByTopic = make(map[string]map[string]struct{})
}
