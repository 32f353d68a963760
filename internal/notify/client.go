package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts notification events to the external collaborator
// service, which fans them out to webhooks and mail.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"notify service error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}

type welcomePayload struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Code     string `json:"code"`
}

// SendWelcome delivers the registration mail with the activation code.
func (c *Client) SendWelcome(ctx context.Context, email, nickname, code string) error {
	return c.post(ctx, "/mail/welcome", welcomePayload{
		Email:    email,
		Nickname: nickname,
		Code:     code,
	})
}

type accessPayload struct {
	DocID    uint64 `json:"doc_id"`
	AuthorID uint64 `json:"author_id"`
	Role     string `json:"role"`
}

// SendAccessChange announces a grant or role change on a document.
func (c *Client) SendAccessChange(ctx context.Context, docID, authorID uint64, role string) error {
	return c.post(ctx, "/webhook/access", accessPayload{
		DocID:    docID,
		AuthorID: authorID,
		Role:     role,
	})
}

type kickPayload struct {
	DocID    uint64 `json:"doc_id"`
	AuthorID uint64 `json:"author_id"`
}

// SendKick announces a revoked access.
func (c *Client) SendKick(ctx context.Context, docID, authorID uint64) error {
	return c.post(ctx, "/webhook/kick", kickPayload{
		DocID:    docID,
		AuthorID: authorID,
	})
}
