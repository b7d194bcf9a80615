package bot

import (
	"context"
	"log"
	"time"

	"github.com/rmeeraws/phuketer/internal/transport"
)

// progressFrames is the placeholder animation cycled while a reply is in
// flight. The placeholder is sent with frame 0; the loop edits in the rest.
var progressFrames = []string{"Окей-кап⏳", "Окей-кап..⌛️", "Окей-кап...⏳"}

// progress animates a single placeholder message on a fixed cadence until
// stopped. Exactly one loop runs per placeholder; the owner must stop it
// before finalizing the message.
type progress struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startProgress begins the animation loop. Individual edit failures are
// logged and swallowed: the placeholder may already be gone, and the loop
// keeps its cadence regardless.
func startProgress(tr transport.Transport, chatID, messageID int64, interval time.Duration) *progress {
	ctx, cancel := context.WithCancel(context.Background())
	p := &progress{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		frame := 1
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if ctx.Err() != nil {
				return
			}
			if err := tr.EditMessageText(chatID, messageID, progressFrames[frame%len(progressFrames)], transport.ModeHTML); err != nil {
				log.Printf("[bot] progress edit failed: %v", err)
			}
			frame++
		}
	}()
	return p
}

// stop signals cancellation and waits for the loop to exit. No edit happens
// after stop returns.
func (p *progress) stop() {
	p.cancel()
	<-p.done
}
