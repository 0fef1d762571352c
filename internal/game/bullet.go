package game

// Bullet is a projectile owned by exactly one tank.
type Bullet struct {
	ID          int
	Owner       int // tank ID
	Pos         Vec
	PrevPos     Vec // previous tick, for the swept gate test
	Vel         Vec
	Rotation    float64
	Speed       float64
	UpdatesSeen int
	Dead        bool
}

// BulletQueue is a tank's live bullets in firing order (oldest first).
type BulletQueue struct {
	items []*Bullet
}

// Len returns the number of live bullets.
func (q *BulletQueue) Len() int { return len(q.items) }

// Push appends a freshly fired bullet.
func (q *BulletQueue) Push(b *Bullet) { q.items = append(q.items, b) }

// Oldest returns the first-fired live bullet, or nil.
func (q *BulletQueue) Oldest() *Bullet {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Remove drops the bullet with the given ID. It reports whether it was held.
func (q *BulletQueue) Remove(id int) bool {
	for i, b := range q.items {
		if b.ID == id {
			copy(q.items[i:], q.items[i+1:])
			q.items[len(q.items)-1] = nil
			q.items = q.items[:len(q.items)-1]
			return true
		}
	}
	return false
}

// Find returns the bullet with the given ID, or nil.
func (q *BulletQueue) Find(id int) *Bullet {
	for _, b := range q.items {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Snapshot returns a copy of the live bullets, safe to iterate while the
// queue is mutated.
func (q *BulletQueue) Snapshot() []*Bullet {
	out := make([]*Bullet, len(q.items))
	copy(out, q.items)
	return out
}
