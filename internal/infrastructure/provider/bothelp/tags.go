package bothelp

import (
	"context"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/tagrelay/internal/domain/subscriber"
	apperrors "github.com/wekeepgrowing/tagrelay/pkg/errors"
)

type tagRequest struct {
	SubscriberID string `json:"subscriber_id"`
	Tag          string `json:"tag"`
}

// AddTag applies a tag to a subscriber. The remote endpoint is idempotent;
// re-adding an existing tag succeeds.
func (c *Client) AddTag(ctx context.Context, ref subscriber.Ref, tag string) error {
	return c.mutateTag(ctx, "/subscribers/tags/add", ref, tag)
}

// RemoveTag removes a tag from a subscriber.
func (c *Client) RemoveTag(ctx context.Context, ref subscriber.Ref, tag string) error {
	return c.mutateTag(ctx, "/subscribers/tags/remove", ref, tag)
}

func (c *Client) mutateTag(ctx context.Context, path string, ref subscriber.Ref, tag string) error {
	status, body, err := c.postJSON(ctx, path, tagRequest{
		SubscriberID: string(ref),
		Tag:          tag,
	}, apperrors.ErrTagMutationFailed)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		c.logger.Error("BotHelp tag mutation rejected",
			zap.String("endpoint", path),
			zap.String("subscriber_id", string(ref)),
			zap.String("tag", tag),
			zap.Int("status", status),
			zap.String("body", excerpt(body)),
		)
		return apperrors.NewAppError(apperrors.ErrTagMutationFailed, "tag endpoint returned non-success status", nil)
	}

	return nil
}
