package mqtt

import "log"

// queuedMsg is a serialized MQTT message held for replay after the
// broker connection comes back.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// replayQueue is a fixed-capacity FIFO holding messages published while
// disconnected. When full, the oldest message is dropped. Not safe for
// concurrent use — the publisher serializes access.
type replayQueue struct {
	msgs    []queuedMsg
	max     int
	dropped int // messages dropped since the last drain
}

func newReplayQueue(max int) *replayQueue {
	return &replayQueue{max: max}
}

func (q *replayQueue) add(msg queuedMsg) {
	if len(q.msgs) == q.max {
		if q.dropped == 0 {
			log.Printf("mqtt: replay queue full (%d messages), dropping oldest", q.max)
		}
		q.dropped++
		copy(q.msgs, q.msgs[1:])
		q.msgs = q.msgs[:q.max-1]
	}
	q.msgs = append(q.msgs, msg)
}

// drain returns all queued messages in publish order and empties the queue.
func (q *replayQueue) drain() []queuedMsg {
	if len(q.msgs) == 0 {
		return nil
	}
	if q.dropped > 0 {
		log.Printf("mqtt: %d messages were dropped while disconnected", q.dropped)
	}

	out := q.msgs
	q.msgs = nil
	q.dropped = 0
	return out
}

func (q *replayQueue) len() int {
	return len(q.msgs)
}
