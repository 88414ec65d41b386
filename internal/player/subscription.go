package player

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	StatusChanged <-chan StatusChange
	StallChanged  <-chan StallChange
	RateChanged   <-chan RateChange
	Finished      <-chan FinishEvent
	Metadata      <-chan MetadataEvent
	Done          <-chan struct{}

	// Internal write channels
	statusCh   chan StatusChange
	stallCh    chan StallChange
	rateCh     chan RateChange
	finishedCh chan FinishEvent
	metadataCh chan MetadataEvent
	doneCh     chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		statusCh:   make(chan StatusChange, eventBufferSize),
		stallCh:    make(chan StallChange, eventBufferSize),
		rateCh:     make(chan RateChange, eventBufferSize),
		finishedCh: make(chan FinishEvent, eventBufferSize),
		metadataCh: make(chan MetadataEvent, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.StatusChanged = s.statusCh
	s.StallChanged = s.stallCh
	s.RateChanged = s.rateCh
	s.Finished = s.finishedCh
	s.Metadata = s.metadataCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendStatus sends a status change event (non-blocking).
func (s *Subscription) sendStatus(e StatusChange) {
	select {
	case s.statusCh <- e:
	default:
		// Drop if buffer full
	}
}

func (s *Subscription) sendStall(e StallChange) {
	select {
	case s.stallCh <- e:
	default:
	}
}

func (s *Subscription) sendRate(e RateChange) {
	select {
	case s.rateCh <- e:
	default:
	}
}

func (s *Subscription) sendFinished(e FinishEvent) {
	select {
	case s.finishedCh <- e:
	default:
	}
}

func (s *Subscription) sendMetadata(e MetadataEvent) {
	select {
	case s.metadataCh <- e:
	default:
	}
}
