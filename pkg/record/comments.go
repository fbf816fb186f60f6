package record

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxCommentsPerPage is the largest limit accepted by /record/comments.json.
const maxCommentsPerPage = 10

// Validate checks the mention code and type.
func (m Mention) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Code, validation.Required),
		validation.Field(&m.Type, validation.Required,
			validation.In(MentionTypeUser, MentionTypeGroup, MentionTypeOrganization)),
	)
}

// CommentContent is the body of a new comment.
type CommentContent struct {
	Text     string    `json:"text"`
	Mentions []Mention `json:"mentions,omitempty"`
}

// Validate checks that the comment has text and well-formed mentions.
func (c CommentContent) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Text, validation.Required),
		validation.Field(&c.Mentions),
	)
}

// AddCommentParams posts a comment on a record.
type AddCommentParams struct {
	App     AppID          `json:"app"`
	Record  RecordID       `json:"record"`
	Comment CommentContent `json:"comment"`
}

// Validate checks the target record and comment body.
func (p AddCommentParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.App, validation.Required),
		validation.Field(&p.Record, validation.Required),
		validation.Field(&p.Comment),
	)
}

// AddCommentResult holds the ID of the new comment.
type AddCommentResult struct {
	ID CommentID `json:"id"`
}

// AddComment posts a comment.
func (c *Client) AddComment(ctx context.Context, params AddCommentParams) (*AddCommentResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var result AddCommentResult
	if err := c.http.Post(ctx, c.path("record/comment.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteCommentParams selects a comment to delete.
type DeleteCommentParams struct {
	App     AppID     `json:"app"`
	Record  RecordID  `json:"record"`
	Comment CommentID `json:"comment"`
}

// DeleteComment deletes a comment.
func (c *Client) DeleteComment(ctx context.Context, params DeleteCommentParams) error {
	return c.http.Delete(ctx, c.path("record/comment.json"), params, nil)
}

// CommentOrder sorts comments by creation time.
type CommentOrder string

const (
	CommentOrderAsc  CommentOrder = "asc"
	CommentOrderDesc CommentOrder = "desc"
)

// GetCommentsParams pages through the comments of a record. Zero values leave
// order, offset and limit to the server defaults.
type GetCommentsParams struct {
	App    AppID        `json:"app"`
	Record RecordID     `json:"record"`
	Order  CommentOrder `json:"order,omitempty"`
	Offset int          `json:"offset,omitempty"`
	Limit  int          `json:"limit,omitempty"`
}

// Validate checks the paging parameters.
func (p GetCommentsParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.App, validation.Required),
		validation.Field(&p.Record, validation.Required),
		validation.Field(&p.Order, validation.In(CommentOrderAsc, CommentOrderDesc)),
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Min(0), validation.Max(maxCommentsPerPage)),
	)
}

// GetCommentsResult is one page of comments. Older and Newer report whether
// comments exist beyond the page in each direction.
type GetCommentsResult struct {
	Comments []Comment `json:"comments"`
	Older    bool      `json:"older"`
	Newer    bool      `json:"newer"`
}

// GetComments lists comments of a record.
func (c *Client) GetComments(ctx context.Context, params GetCommentsParams) (*GetCommentsResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var result GetCommentsResult
	if err := c.http.Get(ctx, c.path("record/comments.json"), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
