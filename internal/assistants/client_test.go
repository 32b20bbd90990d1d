package assistants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateRun_SendsAssistantAndInstructions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/threads/thread_1/runs" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("OpenAI-Beta") != "assistants=v2" {
			t.Errorf("expected assistants beta header, got %q", r.Header.Get("OpenAI-Beta"))
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["assistant_id"] != "asst_1" {
			t.Errorf("expected assistant_id asst_1, got %v", body["assistant_id"])
		}
		if body["instructions"] != "be socratic" {
			t.Errorf("expected instructions, got %v", body["instructions"])
		}

		json.NewEncoder(w).Encode(Run{ID: "run_1", ThreadID: "thread_1", Status: RunStatusQueued})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetTestTransport(server.URL)

	run, err := c.CreateRun(context.Background(), "thread_1", "asst_1", "be socratic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID != "run_1" || run.Status != RunStatusQueued {
		t.Errorf("unexpected run: %+v", run)
	}
}

func TestCreateThread(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/threads" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(Thread{ID: "thread_new"})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetTestTransport(server.URL)

	thread, err := c.CreateThread(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thread.ID != "thread_new" {
		t.Errorf("expected thread_new, got %q", thread.ID)
	}
}

func TestListMessages_AscOrderAndText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("order") != "asc" {
			t.Errorf("expected order=asc, got %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []Message{
				{ID: "msg_1", Role: "user", Content: []ContentPart{{Type: "text", Text: &TextContent{Value: "hello"}}}},
				{ID: "msg_2", Role: "assistant", Content: []ContentPart{{Type: "text", Text: &TextContent{Value: "hi there"}}}},
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetTestTransport(server.URL)

	messages, err := c.ListMessages(context.Background(), "thread_1", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text() != "hello" || messages[1].Text() != "hi there" {
		t.Errorf("unexpected message texts: %q, %q", messages[0].Text(), messages[1].Text())
	}
}

func TestUploadFile_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != "assistants" {
			t.Errorf("expected purpose assistants, got %q", got)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if header.Filename != "notes.md" {
			t.Errorf("expected filename notes.md, got %q", header.Filename)
		}
		json.NewEncoder(w).Encode(File{ID: "file_1", Filename: "notes.md"})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetTestTransport(server.URL)

	file, err := c.UploadFile(context.Background(), "notes.md", []byte("# notes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.ID != "file_1" {
		t.Errorf("expected file_1, got %q", file.ID)
	}
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "no thread found",
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetTestTransport(server.URL)

	_, err := c.GetRun(context.Background(), "thread_x", "run_x")
	if err == nil {
		t.Fatal("expected error for API error response")
	}
}

func TestRunStatus_Terminal(t *testing.T) {
	terminal := []RunStatus{RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %q to be terminal", s)
		}
	}
	for _, s := range []RunStatus{RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction} {
		if s.Terminal() {
			t.Errorf("expected %q to be non-terminal", s)
		}
	}
}
