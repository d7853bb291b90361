package crawl

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RetryFailures re-runs every failure record an operator has marked for
// retry (retry_count > 0), least-retried first. Each record is synthesized
// back into a directory-shaped entry and pushed through the normal
// directory path; a successful resolution deletes the record there. A
// record that fails again keeps shrinking its retry count until it reaches
// zero, where it waits for the operator. A panic mid-pass is converted into
// an error so the caller can still report what was done.
func (o *Orchestrator) RetryFailures(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("retry pass panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = fmt.Errorf("retry pass panicked: %v", r)
		}
	}()
	records, err := o.failures.ListRetryable(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		o.logger.Info("no failed entries marked for retry")
		return nil
	}
	o.logger.Info("retrying failed entries", zap.Int("count", len(records)))

	for _, rec := range records {
		entry := Entry{
			Name:  rec.Name,
			URL:   rec.URL,
			IsDir: true,
			Raw:   rec.RawText,
		}
		o.processDirectory(ctx, entry)

		// No-op when the attempt succeeded and deleted the record.
		if err := o.failures.DecrementRetry(ctx, rec.URL); err != nil {
			o.logger.Error("retry count decrement failed",
				zap.String("url", rec.URL), zap.Error(err))
		}
	}
	return nil
}
