package graph

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/core"
)

const (
	messageSelect = "id,subject,from,receivedDateTime,bodyPreview,importance,categories,hasAttachments,flag,isRead"
	folderSelect  = "id,displayName,parentFolderId,totalItemCount,unreadItemCount"
)

// Gateway implements core.MailGateway on the Graph REST surface.
type Gateway struct {
	client *Client
	logger *zap.Logger
}

// NewGateway creates a mail gateway on top of the shared client.
func NewGateway(client *Client, logger *zap.Logger) *Gateway {
	return &Gateway{client: client, logger: logger}
}

type listResponse[T any] struct {
	Value []T `json:"value"`
}

type graphRecipient struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

type graphMessage struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	From             graphRecipient `json:"from"`
	ReceivedDateTime time.Time      `json:"receivedDateTime"`
	BodyPreview      string         `json:"bodyPreview"`
	Importance       string         `json:"importance"`
	Categories       []string       `json:"categories"`
	HasAttachments   bool           `json:"hasAttachments"`
	IsRead           bool           `json:"isRead"`
	Flag             struct {
		FlagStatus string `json:"flagStatus"`
	} `json:"flag"`
	Body struct {
		ContentType string `json:"contentType"`
		Content     string `json:"content"`
	} `json:"body"`
}

func (m graphMessage) toMail() core.Mail {
	flag := core.FlagStatus(m.Flag.FlagStatus)
	if flag == "" {
		flag = core.FlagNotFlagged
	}
	importance := core.Importance(m.Importance)
	if importance == "" {
		importance = core.ImportanceNormal
	}
	return core.Mail{
		ID:             m.ID,
		Subject:        m.Subject,
		Sender:         core.EmailAddress{Address: m.From.EmailAddress.Address, Name: m.From.EmailAddress.Name},
		ReceivedAt:     m.ReceivedDateTime,
		IsRead:         m.IsRead,
		Flag:           flag,
		Importance:     importance,
		HasAttachments: m.HasAttachments,
		Categories:     m.Categories,
		BodyPreview:    m.BodyPreview,
		Body:           m.Body.Content,
	}
}

type graphFolder struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	ParentFolderID  string `json:"parentFolderId"`
	TotalItemCount  int    `json:"totalItemCount"`
	UnreadItemCount int    `json:"unreadItemCount"`
}

func (f graphFolder) toFolder() core.Folder {
	return core.Folder{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		ParentID:    f.ParentFolderID,
		UnreadCount: f.UnreadItemCount,
		TotalCount:  f.TotalItemCount,
	}
}

// ListFolders lists child folders of parentID, or top-level folders when
// parentID is empty.
func (g *Gateway) ListFolders(ctx context.Context, parentID string) ([]core.Folder, error) {
	path := "/me/mailFolders"
	if parentID != "" {
		path = fmt.Sprintf("/me/mailFolders/%s/childFolders", url.PathEscape(parentID))
	}
	path += "?$select=" + folderSelect

	var resp listResponse[graphFolder]
	if err := g.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	folders := make([]core.Folder, 0, len(resp.Value))
	for _, f := range resp.Value {
		folders = append(folders, f.toFolder())
	}
	return folders, nil
}

// ListMessages lists messages, newest first. An empty folderID targets
// the default message view across the mailbox.
func (g *Gateway) ListMessages(ctx context.Context, folderID string, opts core.ListOptions) ([]core.Mail, error) {
	top := opts.Top
	if top <= 0 {
		top = 50
	}

	params := url.Values{
		"$top":     {strconv.Itoa(top)},
		"$select":  {messageSelect},
		"$orderby": {"receivedDateTime desc"},
	}
	if opts.UnreadOnly {
		params.Set("$filter", "isRead eq false")
	}

	path := "/me/messages"
	if folderID != "" {
		path = fmt.Sprintf("/me/mailFolders/%s/messages", url.PathEscape(folderID))
	}

	var resp listResponse[graphMessage]
	if err := g.client.get(ctx, path+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	mails := make([]core.Mail, 0, len(resp.Value))
	for _, m := range resp.Value {
		mails = append(mails, m.toMail())
	}
	g.logger.Debug("Messages listed",
		zap.String("folder", folderID),
		zap.Int("count", len(mails)))
	return mails, nil
}

// GetMessage fetches one message including its full body.
func (g *Gateway) GetMessage(ctx context.Context, messageID string) (core.Mail, error) {
	var msg graphMessage
	path := fmt.Sprintf("/me/messages/%s", url.PathEscape(messageID))
	if err := g.client.get(ctx, path, &msg); err != nil {
		return core.Mail{}, err
	}
	return msg.toMail(), nil
}

// Move moves a message to the destination folder.
func (g *Gateway) Move(ctx context.Context, messageID, destFolderID string) error {
	path := fmt.Sprintf("/me/messages/%s/move", url.PathEscape(messageID))
	return g.client.post(ctx, path, map[string]string{"destinationId": destFolderID}, nil)
}

// MarkRead patches the read state of a message.
func (g *Gateway) MarkRead(ctx context.Context, messageID string, isRead bool) error {
	path := fmt.Sprintf("/me/messages/%s", url.PathEscape(messageID))
	return g.client.patch(ctx, path, map[string]bool{"isRead": isRead})
}

// Flag patches the follow-up flag of a message.
func (g *Gateway) Flag(ctx context.Context, messageID string, status core.FlagStatus) error {
	path := fmt.Sprintf("/me/messages/%s", url.PathEscape(messageID))
	return g.client.patch(ctx, path, map[string]interface{}{
		"flag": map[string]string{"flagStatus": string(status)},
	})
}

// Categorise replaces the categories of a message.
func (g *Gateway) Categorise(ctx context.Context, messageID string, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	path := fmt.Sprintf("/me/messages/%s", url.PathEscape(messageID))
	return g.client.patch(ctx, path, map[string][]string{"categories": categories})
}

// SetImportance patches the importance of a message.
func (g *Gateway) SetImportance(ctx context.Context, messageID string, importance core.Importance) error {
	path := fmt.Sprintf("/me/messages/%s", url.PathEscape(messageID))
	return g.client.patch(ctx, path, map[string]string{"importance": string(importance)})
}

// Delete deletes a message.
func (g *Gateway) Delete(ctx context.Context, messageID string) error {
	path := fmt.Sprintf("/me/messages/%s", url.PathEscape(messageID))
	return g.client.delete(ctx, path)
}
