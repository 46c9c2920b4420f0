package game

// SoundQueue collects sound cues and the music track requested by scripts.
// Audio output is a collaborator; frontends drain the queue each frame.
type SoundQueue struct {
	cues  []int
	Music int
	Last  int // Most recent cue, kept for display
}

// Play queues a sound cue.
func (q *SoundQueue) Play(cue int) {
	q.cues = append(q.cues, cue)
	q.Last = cue
}

// ChangeMusic switches the current music track.
func (q *SoundQueue) ChangeMusic(track int) {
	q.Music = track
}

// Pending returns the number of queued cues.
func (q *SoundQueue) Pending() int {
	return len(q.cues)
}

// Drain returns and clears the queued cues.
func (q *SoundQueue) Drain() []int {
	out := q.cues
	q.cues = nil
	return out
}
