package history

import (
	"sync"

	"github.com/tliron/commonlog"
)

// Recorder decouples history writes from the editor event path: entries
// are queued on a channel and flushed to the store by a background worker,
// so recording never blocks a didChange notification on SQLite.
type Recorder struct {
	store    *Store
	queue    chan Entry
	stopChan chan struct{}
	wg       sync.WaitGroup
	log      commonlog.Logger
}

// NewRecorder creates a Recorder with the specified queue size.
func NewRecorder(store *Store, queueSize int) *Recorder {
	return &Recorder{
		store:    store,
		queue:    make(chan Entry, queueSize),
		stopChan: make(chan struct{}),
		log:      commonlog.GetLogger("history.recorder"),
	}
}

// Run starts the background flush loop.
func (r *Recorder) Run() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case e, ok := <-r.queue:
				if !ok {
					return
				}
				r.flush(e)
			case <-r.stopChan:
				// Drain the queue before exiting.
				for {
					select {
					case e := <-r.queue:
						r.flush(e)
					default:
						return
					}
				}
			}
		}
	}()
}

func (r *Recorder) flush(e Entry) {
	if err := r.store.Append(e); err != nil {
		r.log.Errorf("failed to append history entry for %s: %v", e.DocID, err)
	}
}

// Record queues an entry. When the queue is full the entry is dropped and
// logged; losing one history event is preferable to stalling the editor.
func (r *Recorder) Record(e Entry) {
	select {
	case r.queue <- e:
	default:
		r.log.Warningf("history queue full, dropping entry for %s", e.DocID)
	}
}

// Close drains pending entries and stops the worker.
func (r *Recorder) Close() {
	close(r.stopChan)
	r.wg.Wait()
}
