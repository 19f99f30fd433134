package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/utils"
)

// PreviewLimit caps the body preview sent to the reasoning service.
const PreviewLimit = 500

// DefaultBatchSize is the number of messages per reasoning-service call.
const DefaultBatchSize = 10

// MailBatchClassifier partitions candidate messages into fixed-size
// batches and classifies each batch against the enabled rules. Batches
// run strictly sequentially so the load on the reasoning service stays
// bounded and progress reporting is monotonic.
type MailBatchClassifier struct {
	client    ReasoningClient
	batchSize int
	logger    *zap.Logger
}

// NewMailBatchClassifier creates a classifier. A non-positive batchSize
// falls back to DefaultBatchSize.
func NewMailBatchClassifier(client ReasoningClient, batchSize int, logger *zap.Logger) *MailBatchClassifier {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MailBatchClassifier{
		client:    client,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Sanitize reduces a message to the fields allowed to reach the
// reasoning service. The preview is truncated to PreviewLimit; the full
// body is never included.
func Sanitize(mail Mail) SanitizedMail {
	subject := mail.Subject
	if subject == "" {
		subject = "(No Subject)"
	}
	from := mail.Sender.Address
	if from == "" {
		from = "unknown"
	}
	flag := mail.Flag
	if flag == "" {
		flag = FlagNotFlagged
	}
	categories := mail.Categories
	if categories == nil {
		categories = []string{}
	}

	return SanitizedMail{
		ID:             mail.ID,
		Subject:        subject,
		From:           from,
		FromName:       mail.Sender.Name,
		ReceivedAt:     mail.ReceivedAt,
		BodyPreview:    utils.TruncateUTF8(mail.BodyPreview, PreviewLimit),
		Importance:     string(mail.Importance),
		HasAttachments: mail.HasAttachments,
		Categories:     categories,
		Flag:           string(flag),
		IsRead:         mail.IsRead,
	}
}

// Classify sanitizes mails, partitions them into batches and classifies
// each batch in submission order. onProgress, when non-nil, is invoked
// after every batch with cumulative counts. Preconditions are checked
// before any network call: at least one mail and at least one enabled
// rule, otherwise a ValidationError. Any batch failure aborts the whole
// run with no partial results.
func (c *MailBatchClassifier) Classify(
	ctx context.Context,
	mails []Mail,
	rules []Rule,
	onProgress func(Progress),
) ([]Classification, error) {
	if len(mails) == 0 {
		return nil, &ValidationError{Detail: "no messages selected for classification"}
	}
	enabled := EnabledRules(rules)
	if len(enabled) == 0 {
		return nil, &ValidationError{Detail: "no classification rules enabled"}
	}

	sanitized := make([]SanitizedMail, 0, len(mails))
	for _, m := range mails {
		sanitized = append(sanitized, Sanitize(m))
	}

	total := len(sanitized)
	results := make([]Classification, 0, total)

	for start := 0; start < total; start += c.batchSize {
		end := start + c.batchSize
		if end > total {
			end = total
		}

		batch := sanitized[start:end]
		c.logger.Debug("Classifying batch",
			zap.Int("from", start),
			zap.Int("size", len(batch)),
			zap.Int("total", total))

		classified, err := c.client.ClassifyBatch(ctx, batch, enabled)
		if err != nil {
			return nil, err
		}
		results = append(results, classified...)

		if onProgress != nil {
			onProgress(Progress{Processed: end, Total: total})
		}
	}

	c.logger.Info("Classification complete",
		zap.Int("messages", total),
		zap.Int("classifications", len(results)))
	return results, nil
}
