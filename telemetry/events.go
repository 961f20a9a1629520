package telemetry

// EventType identifies telemetry events.
type EventType string

const (
	EventShot      EventType = "shot"
	EventBulletHit EventType = "bullet_hit"
	EventCollision EventType = "collision"
	EventBuff      EventType = "buff"
	EventSupply    EventType = "supply"
)

// Event is one row of events.csv. Robot is the robot the event happened
// to: the shooter for shots, the robot losing health for hits and
// collisions.
type Event struct {
	EpisodeID string    `csv:"episode_id"`
	Tick      int       `csv:"tick"`
	Type      EventType `csv:"type"`
	Robot     int       `csv:"robot"`
	Amount    int       `csv:"amount"` // health lost, or ammo granted by a supply
}

// SetTick stamps subsequent events with the tick being simulated.
func (c *Collector) SetTick(tick int) {
	c.tick = tick
}

func (c *Collector) event(t EventType, robot, amount int) {
	c.events = append(c.events, Event{
		EpisodeID: c.episodeID,
		Tick:      c.tick,
		Type:      t,
		Robot:     robot,
		Amount:    amount,
	})
}

// Events returns the episode's events in the order they happened.
func (c *Collector) Events() []Event {
	return append([]Event(nil), c.events...)
}
