package worker

import (
	"context"
	"errors"

	"go-ticket-sales-engine/internal/model"
	"go-ticket-sales-engine/internal/queue"
	"go-ticket-sales-engine/internal/repository"
	apperrors "go-ticket-sales-engine/pkg/app_errors"
	"go-ticket-sales-engine/pkg/logger"

	"go.uber.org/zap"
)

// WaitlistNotifier 消費釋出庫存事件，對候補名單的第一順位觸發通知。
// 通知的實際發送(推播/email)不是引擎的責任，這裡只負責觸發點。
type WaitlistNotifier interface {
	Start(ctx context.Context) error
}

type WaitlistNotifierImpl struct {
	waitlistRepo repository.WaitlistRepository
	queue        queue.RestockQueue
}

func NewWaitlistNotifier(waitlistRepo repository.WaitlistRepository, queue queue.RestockQueue) WaitlistNotifier {
	return &WaitlistNotifierImpl{
		waitlistRepo: waitlistRepo,
		queue:        queue,
	}
}

func (w *WaitlistNotifierImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeRestocks(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handle(ctx, msg.Data); err != nil {
				// 暫時性錯誤(DB 連不上等)，留給重試
				msg.Nack(true)
			} else {
				msg.Ack()
			}
		}
	}()
	return nil
}

func (w *WaitlistNotifierImpl) handle(ctx context.Context, event *queue.RestockEvent) error {
	log := logger.WithComponent("waitlist_notifier").With(
		zap.Int("event_id", event.EventID),
		zap.Int("tier_id", event.TierID),
		zap.Int("freed", event.Freed))

	// 先找票種專屬候補，沒有人排再找活動一般候補
	entry, err := w.headOfLine(ctx, event.EventID, &event.TierID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrWaitlistEntryNotFound) {
			return err
		}
		entry, err = w.headOfLine(ctx, event.EventID, nil)
		if err != nil {
			if errors.Is(err, apperrors.ErrWaitlistEntryNotFound) {
				log.Info("restock event with empty waitlist")
				return nil
			}
			return err
		}
	}

	log.Info("waitlist notify triggered",
		zap.Int("entry_id", entry.ID),
		zap.Int("position", entry.Position),
		zap.String("email", entry.Email))

	return nil
}

func (w *WaitlistNotifierImpl) headOfLine(ctx context.Context, eventID int, tierID *int) (*model.WaitlistEntry, error) {
	return w.waitlistRepo.FirstInScope(ctx, eventID, tierID)
}
