package music

// Device describes the playback device reported by the player.
type Device struct {
	ID       string
	Name     string
	IsActive bool
}

// PlayerState is one observation of the player: what is playing, whether it
// is playing, and how far in it is. Position is authoritative only at the
// moment of observation; the synchronizer advances it locally between reads.
type PlayerState struct {
	Track     *Track
	IsPlaying bool
	Position  int // milliseconds
	Device    Device
}
