package core

import (
	"context"

	"go.uber.org/zap"
)

// FolderTreeBuilder retrieves the mailbox folder hierarchy and flattens
// it depth-first. Traversal is strictly sequential: one outstanding
// remote call at a time, bounding load on the provider.
type FolderTreeBuilder struct {
	gateway MailGateway
	logger  *zap.Logger
}

// NewFolderTreeBuilder creates a folder tree builder.
func NewFolderTreeBuilder(gateway MailGateway, logger *zap.Logger) *FolderTreeBuilder {
	return &FolderTreeBuilder{gateway: gateway, logger: logger}
}

// BuildTree returns the folder tree flattened in pre-order: every folder
// precedes its descendants, and a subtree is fully emitted before the
// next sibling's subtree. Each folder carries its depth (roots are 0).
func (b *FolderTreeBuilder) BuildTree(ctx context.Context) ([]Folder, error) {
	roots, err := b.gateway.ListFolders(ctx, "")
	if err != nil {
		return nil, err
	}

	var out []Folder
	for _, root := range roots {
		root.Depth = 0
		out = b.expand(ctx, out, root)
	}

	b.logger.Debug("Folder tree built", zap.Int("folders", len(out)))
	return out, nil
}

// expand appends folder and then its subtree. Children are only probed
// for folders reporting items, except at depth 0 where empty counts are
// unreliable. A failed child listing truncates that subtree; the parent
// stays in place.
func (b *FolderTreeBuilder) expand(ctx context.Context, out []Folder, folder Folder) []Folder {
	out = append(out, folder)

	if folder.Depth > 0 && folder.TotalCount == 0 {
		return out
	}

	children, err := b.gateway.ListFolders(ctx, folder.ID)
	if err != nil {
		b.logger.Debug("Skipping subtree: child listing failed",
			zap.String("folder", folder.DisplayName),
			zap.Error(err))
		return out
	}

	for _, child := range children {
		child.ParentID = folder.ID
		child.Depth = folder.Depth + 1
		out = b.expand(ctx, out, child)
	}
	return out
}
