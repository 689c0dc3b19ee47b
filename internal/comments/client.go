package comments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/piyushdaiya/dotescrow-kit/internal/core"
	"github.com/piyushdaiya/dotescrow-kit/internal/ss58"
)

var (
	ErrEmptyComment  = errors.New("comment content is empty")
	ErrInvalidRole   = errors.New("invalid author role")
	ErrInvalidAuthor = errors.New("invalid author address")
	ErrMissingEscrow = errors.New("escrow id is required")
)

// Message is one entry of a conversation as stored by the comment service.
type Message struct {
	Message       string    `json:"message"`
	SenderAddress string    `json:"senderAddress"`
	Role          core.Role `json:"role"`
	TimeStamp     int64     `json:"timeStamp"` // unix milliseconds
}

// Conversation is the document kept per escrow and milestone.
type Conversation struct {
	ID          string    `json:"id,omitempty"`
	EscrowID    string    `json:"escrowId"`
	MilestoneID string    `json:"milestoneId,omitempty"`
	Messages    []Message `json:"messages"`
}

// Comment is a message flattened with its conversation context.
type Comment struct {
	ID             string    `json:"id,omitempty" yaml:"id,omitempty"`
	Content        string    `json:"content" yaml:"content"`
	AuthorAddress  string    `json:"author_address" yaml:"author_address"`
	AuthorRole     core.Role `json:"author_role" yaml:"author_role"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	ConversationID string    `json:"conversation_id" yaml:"conversation_id"`
	EscrowID       string    `json:"escrow_id" yaml:"escrow_id"`
	MilestoneID    string    `json:"milestone_id,omitempty" yaml:"milestone_id,omitempty"`
}

type NewComment struct {
	EscrowID      string
	MilestoneID   string
	Content       string
	AuthorAddress string
	AuthorRole    core.Role
}

type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetConversation returns the conversation for an escrow milestone, or nil
// when none exists yet.
func (c *Client) GetConversation(ctx context.Context, escrowID, milestoneID string) (*Conversation, error) {
	if escrowID == "" {
		return nil, ErrMissingEscrow
	}
	q := url.Values{}
	q.Set("escrowId", escrowID)
	if milestoneID != "" {
		q.Set("milestoneId", milestoneID)
	}

	var found []Conversation
	status, err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/comment?"+q.Encode(), nil, &found)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching conversation for escrow %s: %w", escrowID, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Comments lists the messages of an escrow milestone conversation.
func (c *Client) Comments(ctx context.Context, escrowID, milestoneID string) ([]Comment, error) {
	conv, err := c.GetConversation(ctx, escrowID, milestoneID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return []Comment{}, nil
	}
	out := make([]Comment, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		out = append(out, Comment{
			Content:        m.Message,
			AuthorAddress:  m.SenderAddress,
			AuthorRole:     m.Role,
			Timestamp:      time.UnixMilli(m.TimeStamp),
			ConversationID: conv.ID,
			EscrowID:       conv.EscrowID,
			MilestoneID:    conv.MilestoneID,
		})
	}
	return out, nil
}

// AddComment appends to the existing conversation or creates a new one.
func (c *Client) AddComment(ctx context.Context, in NewComment) (*Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if !in.AuthorRole.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, in.AuthorRole)
	}
	if res := ss58.ValidateAddress(in.AuthorAddress); !res.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAuthor, res.Error)
	}

	existing, err := c.GetConversation(ctx, in.EscrowID, in.MilestoneID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	msg := Message{
		Message:       in.Content,
		SenderAddress: ss58.TrimAddress(in.AuthorAddress),
		Role:          in.AuthorRole,
		TimeStamp:     now.UnixMilli(),
	}

	var saved Conversation
	if existing != nil && existing.ID != "" {
		update := *existing
		update.Messages = append(append([]Message{}, existing.Messages...), msg)
		_, err = c.doJSON(ctx, http.MethodPut, c.baseURL+"/comment/"+url.PathEscape(existing.ID), update, &saved)
	} else {
		create := Conversation{
			EscrowID:    in.EscrowID,
			MilestoneID: in.MilestoneID,
			Messages:    []Message{msg},
		}
		_, err = c.doJSON(ctx, http.MethodPost, c.baseURL+"/comment", create, &saved)
	}
	if err != nil {
		return nil, fmt.Errorf("saving comment for escrow %s: %w", in.EscrowID, err)
	}

	conversationID := saved.ID
	if conversationID == "" && existing != nil {
		conversationID = existing.ID
	}
	return &Comment{
		ID:             fmt.Sprintf("%s-msg-%d", conversationID, now.UnixMilli()),
		Content:        in.Content,
		AuthorAddress:  msg.SenderAddress,
		AuthorRole:     in.AuthorRole,
		Timestamp:      now,
		ConversationID: conversationID,
		EscrowID:       in.EscrowID,
		MilestoneID:    in.MilestoneID,
	}, nil
}
