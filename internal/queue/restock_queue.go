package queue

import (
	"context"
	"time"
)

// RestockEvent 某票種釋出庫存(提交失敗的補償或取消)，候補通知的觸發點
type RestockEvent struct {
	EventID    int       `json:"event_id"`
	TierID     int       `json:"tier_id"`
	Freed      int       `json:"freed"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Delivery struct {
	Data *RestockEvent
	Ack  func()
	Nack func(requeue bool)
}

type RestockQueue interface {
	// 發送釋出庫存事件
	PublishRestock(ctx context.Context, event *RestockEvent) error
	// 訂閱釋出庫存事件
	SubscribeRestocks(ctx context.Context) (<-chan Delivery, error)
}

// MemoryRestockQueueImpl 用 Go channel 模擬 MQ，單機與測試用
type MemoryRestockQueueImpl struct {
	ch chan *RestockEvent
}

func NewMemoryRestockQueue(bufferSize int) RestockQueue {
	return &MemoryRestockQueueImpl{
		ch: make(chan *RestockEvent, bufferSize),
	}
}

func (q *MemoryRestockQueueImpl) PublishRestock(ctx context.Context, event *RestockEvent) error {
	q.ch <- event
	return nil
}

func (q *MemoryRestockQueueImpl) SubscribeRestocks(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
