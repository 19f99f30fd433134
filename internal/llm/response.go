package llm

import (
	"encoding/json"
	"strings"

	"github.com/mailmind/mailmind/internal/core"
)

type wireResponse struct {
	Classifications *[]wireClassification `json:"classifications"`
}

type wireClassification struct {
	MessageID   string       `json:"messageId"`
	MatchedRule string       `json:"matchedRule"`
	Reasoning   string       `json:"reasoning"`
	Confidence  float64      `json:"confidence"`
	Actions     []wireAction `json:"actions"`
}

type wireAction struct {
	Action     string   `json:"action"`
	FolderID   string   `json:"folderId"`
	FlagStatus string   `json:"flagStatus"`
	IsRead     *bool    `json:"isRead"`
	Categories []string `json:"categories"`
	Importance string   `json:"importance"`
}

// ParseClassifications parses a reasoning-service reply strictly. The
// content must be one JSON object carrying a "classifications" array;
// anything else fails the whole classify operation with a ParseError.
// Models occasionally wrap the object in prose, so a single brace
// extraction pass is attempted before giving up.
func ParseClassifications(content string) ([]core.Classification, error) {
	var resp wireResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		extracted, ok := extractJSON(content)
		if !ok {
			return nil, &core.ParseError{Detail: "reply is not a JSON object", Err: err}
		}
		if err := json.Unmarshal([]byte(extracted), &resp); err != nil {
			return nil, &core.ParseError{Detail: "reply is not valid JSON", Err: err}
		}
	}
	if resp.Classifications == nil {
		return nil, &core.ParseError{Detail: "missing classifications key"}
	}

	out := make([]core.Classification, 0, len(*resp.Classifications))
	for _, wc := range *resp.Classifications {
		if wc.MessageID == "" {
			return nil, &core.ParseError{Detail: "classification without messageId"}
		}
		c := core.Classification{
			MessageID:   wc.MessageID,
			MatchedRule: wc.MatchedRule,
			Reasoning:   wc.Reasoning,
			Confidence:  wc.Confidence,
		}
		for _, wa := range wc.Actions {
			action, err := decodeAction(wa)
			if err != nil {
				return nil, err
			}
			c.Actions = append(c.Actions, action)
		}
		out = append(out, c)
	}
	return out, nil
}

// decodeAction maps a wire action onto the tagged union, rejecting
// malformed shapes here rather than downstream. Verbs outside the known
// vocabulary become ActionUnknown so the applier can skip them.
func decodeAction(wa wireAction) (core.Action, error) {
	switch core.ActionKind(wa.Action) {
	case core.ActionMove:
		if wa.FolderID == "" {
			return core.Action{}, &core.ParseError{Detail: "move action without folderId"}
		}
		return core.Action{Kind: core.ActionMove, FolderID: wa.FolderID}, nil

	case core.ActionFlag:
		status := core.FlagStatus(wa.FlagStatus)
		if status == "" {
			status = core.FlagFlagged
		}
		switch status {
		case core.FlagFlagged, core.FlagNotFlagged, core.FlagComplete:
		default:
			return core.Action{}, &core.ParseError{Detail: "flag action with invalid flagStatus: " + wa.FlagStatus}
		}
		return core.Action{Kind: core.ActionFlag, FlagStatus: status}, nil

	case core.ActionMarkRead:
		isRead := true
		if wa.IsRead != nil {
			isRead = *wa.IsRead
		}
		return core.Action{Kind: core.ActionMarkRead, IsRead: isRead}, nil

	case core.ActionCategorise:
		categories := wa.Categories
		if categories == nil {
			categories = []string{}
		}
		return core.Action{Kind: core.ActionCategorise, Categories: categories}, nil

	case core.ActionSetImportance:
		importance := core.Importance(wa.Importance)
		switch importance {
		case core.ImportanceLow, core.ImportanceNormal, core.ImportanceHigh:
		default:
			return core.Action{}, &core.ParseError{Detail: "setImportance action with invalid importance: " + wa.Importance}
		}
		return core.Action{Kind: core.ActionSetImportance, Importance: importance}, nil

	case core.ActionDelete:
		return core.Action{Kind: core.ActionDelete}, nil

	default:
		if wa.Action == "" {
			return core.Action{}, &core.ParseError{Detail: "action without a kind"}
		}
		return core.Action{Kind: core.ActionUnknown, RawKind: wa.Action}, nil
	}
}

// extractJSON pulls the outermost {...} span out of a text reply.
func extractJSON(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
