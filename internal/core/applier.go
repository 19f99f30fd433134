package core

import (
	"context"

	"go.uber.org/zap"
)

// ActionApplier applies classification actions against the mail gateway,
// one at a time, isolating failure to the single action.
type ActionApplier struct {
	gateway MailGateway
	logger  *zap.Logger
}

// NewActionApplier creates an action applier.
func NewActionApplier(gateway MailGateway, logger *zap.Logger) *ActionApplier {
	return &ActionApplier{gateway: gateway, logger: logger}
}

// FlattenActions turns classifications into a linear action list,
// preserving classification order and the action order within each
// classification, and tagging every action with its owning message id.
func FlattenActions(classifications []Classification) []Action {
	var out []Action
	for _, c := range classifications {
		for _, a := range c.Actions {
			a.MessageID = c.MessageID
			out = append(out, a)
		}
	}
	return out
}

// Apply runs every action in order and returns one ActionResult per
// action, order-correlated with the input. A failed action is recorded
// and never aborts the remaining actions; unknown kinds are recorded as
// skipped without being attempted. Apply itself never fails.
func (a *ActionApplier) Apply(ctx context.Context, actions []Action) ApplySummary {
	summary := ApplySummary{Results: make([]ActionResult, 0, len(actions))}

	for _, action := range actions {
		result := ActionResult{MessageID: action.MessageID, Kind: action.Kind}

		switch action.Kind {
		case ActionUnknown:
			result.Skipped = true
			summary.Skipped++
			a.logger.Warn("Skipping unrecognised action kind",
				zap.String("kind", action.RawKind),
				zap.String("message_id", action.MessageID))
			summary.Results = append(summary.Results, result)
			continue
		default:
		}

		if err := a.applyOne(ctx, action); err != nil {
			result.Error = err.Error()
			summary.Failed++
			a.logger.Warn("Action failed",
				zap.String("kind", string(action.Kind)),
				zap.String("message_id", action.MessageID),
				zap.Error(err))
		} else {
			result.Success = true
			summary.Succeeded++
			if action.Kind == ActionMove || action.Kind == ActionDelete {
				summary.RemovedIDs = append(summary.RemovedIDs, action.MessageID)
			}
		}
		summary.Results = append(summary.Results, result)
	}

	a.logger.Info("Actions applied",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))
	return summary
}

func (a *ActionApplier) applyOne(ctx context.Context, action Action) error {
	switch action.Kind {
	case ActionMove:
		return a.gateway.Move(ctx, action.MessageID, action.FolderID)
	case ActionFlag:
		return a.gateway.Flag(ctx, action.MessageID, action.FlagStatus)
	case ActionMarkRead:
		return a.gateway.MarkRead(ctx, action.MessageID, action.IsRead)
	case ActionCategorise:
		return a.gateway.Categorise(ctx, action.MessageID, action.Categories)
	case ActionSetImportance:
		return a.gateway.SetImportance(ctx, action.MessageID, action.Importance)
	case ActionDelete:
		return a.gateway.Delete(ctx, action.MessageID)
	default:
		return &ValidationError{Detail: "unsupported action kind: " + string(action.Kind)}
	}
}
