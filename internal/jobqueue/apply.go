package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/4csolutions/razorpay-payments/internal/modules/payments"
)

// ApplyEnqueuer adapts the queue to the reconciliation handler's
// Enqueuer interface.
type ApplyEnqueuer struct{ q *Queue }

func NewApplyEnqueuer(q *Queue) *ApplyEnqueuer { return &ApplyEnqueuer{q: q} }

func (e *ApplyEnqueuer) EnqueueApply(ctx context.Context, task payments.ApplyTask) error {
	_, err := e.q.Enqueue(ctx, JobTypeApplyPayment, task)
	return err
}

var _ payments.Enqueuer = (*ApplyEnqueuer)(nil)

// ApplyHandler decodes apply-payment jobs and runs them through the
// apply service.
func ApplyHandler(svc *payments.ApplyService) Handler {
	return func(ctx context.Context, job *Job) error {
		var task payments.ApplyTask
		if err := json.Unmarshal(job.Payload, &task); err != nil {
			return fmt.Errorf("decode apply task: %w", err)
		}
		return svc.Apply(ctx, task)
	}
}
