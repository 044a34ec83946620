// internal/app/system/workers/notifier.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/events"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NotificationWriter persists notifications.
type NotificationWriter interface {
	InsertMany(ctx context.Context, ns []models.Notification) error
}

const (
	notifierQueue   = "learnhub-notifier"
	notifierBacklog = 256
)

// Notifier turns domain events into notification documents. With a NATS
// connection it consumes every learnhub subject from a queue group; without
// one it doubles as the in-process events.Publisher.
type Notifier struct {
	sink   NotificationWriter
	log    *zap.Logger
	conn   *nats.Conn
	now    func() time.Time
	msgs   chan *nats.Msg
	sub    *nats.Subscription
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier. conn may be nil.
func NewNotifier(sink NotificationWriter, conn *nats.Conn, logger *zap.Logger) *Notifier {
	return &Notifier{
		sink:   sink,
		log:    logger,
		conn:   conn,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start subscribes to NATS and begins the consume loop. Without a
// connection it only logs.
func (w *Notifier) Start() error {
	if w.conn == nil {
		w.log.Info("notifier running in-process (no nats)")
		return nil
	}
	w.msgs = make(chan *nats.Msg, notifierBacklog)
	sub, err := w.conn.ChanQueueSubscribe(events.SubjectAll, notifierQueue, w.msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.SubjectAll, err)
	}
	w.sub = sub
	w.wg.Add(1)
	go w.run()
	w.log.Info("notifier worker started", zap.String("subject", events.SubjectAll))
	return nil
}

// Stop drains the subscription and waits for the loop to finish.
func (w *Notifier) Stop() {
	if w.sub == nil {
		return
	}
	if err := w.sub.Unsubscribe(); err != nil {
		w.log.Warn("notifier unsubscribe failed", zap.Error(err))
	}
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notifier worker stopped")
}

func (w *Notifier) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case msg := <-w.msgs:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.Handle(ctx, msg.Subject, msg.Data); err != nil {
				w.log.Error("notification write failed",
					zap.String("subject", msg.Subject),
					zap.Error(err))
			}
			cancel()
		}
	}
}

// Handle writes the notifications produced by one event.
func (w *Notifier) Handle(ctx context.Context, subject string, data []byte) error {
	ns, err := events.Notifications(subject, data, w.now().UTC())
	if err != nil {
		return err
	}
	if len(ns) == 0 {
		return nil
	}
	return w.sink.InsertMany(ctx, ns)
}

// Publish implements events.Publisher by handling the event directly.
func (w *Notifier) Publish(ctx context.Context, subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", subject, err)
	}
	return w.Handle(ctx, subject, data)
}
