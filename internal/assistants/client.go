// Package assistants is a typed client for the OpenAI Assistants beta
// surface: threads, thread messages, runs and file uploads. Only the
// operations tutord needs are covered.
package assistants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewClient returns a client bound to an API key and the model used for
// assistant creation. Runs use whatever model the assistant was created with.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(baseURL string) {
	c.baseURL = baseURL
}

type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
)

// Terminal reports whether a run will make no further progress.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

type Thread struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}

type TextContent struct {
	Value string `json:"value"`
}

type ContentPart struct {
	Type string       `json:"type"`
	Text *TextContent `json:"text,omitempty"`
}

type Message struct {
	ID        string        `json:"id"`
	CreatedAt int64         `json:"created_at"`
	Role      string        `json:"role"`
	Content   []ContentPart `json:"content"`
}

// Text returns the first text part of a message, or "".
func (m Message) Text() string {
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			return part.Text.Value
		}
	}
	return ""
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Run struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id"`
	Status      RunStatus `json:"status"`
	LastError   *RunError `json:"last_error,omitempty"`
	Usage       *Usage    `json:"usage,omitempty"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

type Assistant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateThread starts an empty conversation thread.
func (c *Client) CreateThread(ctx context.Context) (Thread, error) {
	var thread Thread
	if err := c.doJSON(ctx, http.MethodPost, "/threads", map[string]any{}, &thread); err != nil {
		return Thread{}, fmt.Errorf("create thread: %w", err)
	}
	return thread, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, content string) (Message, error) {
	body := map[string]any{"role": role, "content": content}
	var msg Message
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, &msg); err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// CreateRun starts a run of the given assistant over the thread's messages,
// overriding the assistant's stored instructions.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (Run, error) {
	body := map[string]any{"assistant_id": assistantID}
	if instructions != "" {
		body["instructions"] = instructions
	}
	var run Run
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &run); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

type messageList struct {
	Data []Message `json:"data"`
}

// ListMessages returns the thread's messages, oldest first when orderAsc is set.
func (c *Client) ListMessages(ctx context.Context, threadID string, orderAsc bool) ([]Message, error) {
	path := "/threads/" + threadID + "/messages"
	if orderAsc {
		path += "?order=asc"
	}
	var list messageList
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return list.Data, nil
}

// UploadFile uploads reference material with purpose "assistants".
func (c *Client) UploadFile(ctx context.Context, name string, contents []byte) (File, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", "assistants"); err != nil {
		return File{}, fmt.Errorf("upload file: %w", err)
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return File{}, fmt.Errorf("upload file: %w", err)
	}
	if _, err := part.Write(contents); err != nil {
		return File{}, fmt.Errorf("upload file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return File{}, fmt.Errorf("upload file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return File{}, fmt.Errorf("upload file: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeaders(req)

	var file File
	if err := c.send(req, &file); err != nil {
		return File{}, fmt.Errorf("upload file %q: %w", name, err)
	}
	return file, nil
}

// CreateAssistant registers a persona with the provider, attaching the
// uploaded reference files for retrieval.
func (c *Client) CreateAssistant(ctx context.Context, name, description, instructions string, fileIDs []string) (Assistant, error) {
	body := map[string]any{
		"model":       c.model,
		"name":        name,
		"description": description,
		"tools":       []map[string]string{{"type": "file_search"}},
	}
	if instructions != "" {
		body["instructions"] = instructions
	}
	if len(fileIDs) > 0 {
		body["file_ids"] = fileIDs
	}
	var assistant Assistant
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", body, &assistant); err != nil {
		return Assistant{}, fmt.Errorf("create assistant: %w", err)
	}
	return assistant, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeaders(req)

	return c.send(req, out)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("api error %d: %s: %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
