package internal

// DoneChan signals completion by closing. It is used by internal/supervisor
// to learn when every spawned worker in a fleet has joined.
type DoneChan chan struct{}
