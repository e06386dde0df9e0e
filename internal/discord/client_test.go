package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.DiscordConfig{
		Token:          "secret-token",
		ApplicationID:  "app-1",
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestStartPrivateThread(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/channels/parent-1/threads" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bot secret-token" {
			t.Errorf("authorization header %q", got)
		}
		if got := r.Header.Get("X-Audit-Log-Reason"); got != "Ticket created by alice" {
			t.Errorf("audit reason %q", got)
		}
		var params StartThreadParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if params.Name != "💬 General Support - alice" || params.Type != ChannelTypePrivateThread {
			t.Errorf("thread params %#v", params)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Channel{ID: "thread-9", Type: ChannelTypePrivateThread, Name: params.Name})
	}))

	thread, err := client.StartPrivateThread(context.Background(), "parent-1", "💬 General Support - alice", "Ticket created by alice")
	if err != nil {
		t.Fatalf("start thread: %v", err)
	}
	if thread.ID != "thread-9" {
		t.Fatalf("thread id %q", thread.ID)
	}
}

func TestChannelMessages(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/thread-1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":"2","author":{"id":"u2","username":"bob"},"content":"later","timestamp":"2024-05-01T10:01:00Z"},
			{"id":"1","author":{"id":"u1","username":"alice"},"content":"earlier","timestamp":"2024-05-01T10:00:00Z"}
		]`)
	}))

	msgs, err := client.ChannelMessages(context.Background(), "thread-1", 100)
	if err != nil {
		t.Fatalf("fetch messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("message count %d", len(msgs))
	}
	if msgs[0].Author.Username != "bob" || msgs[0].Content != "later" {
		t.Fatalf("first message %#v", msgs[0])
	}
	if !msgs[1].Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp %v", msgs[1].Timestamp)
	}
}

func TestGuildMembersWithRole(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/guild-1/members" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"user":{"id":"u1","username":"alice"},"roles":["role-a","role-b"]},
			{"user":{"id":"u2","username":"bob"},"roles":["role-b"]},
			{"user":{"id":"u3","username":"carol"},"roles":[]}
		]`)
	}))

	members, err := client.GuildMembersWithRole(context.Background(), "guild-1", "role-a")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].User.ID != "u1" {
		t.Fatalf("holders %#v", members)
	}
}

func TestCreateMessageWithFile(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("content type %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		var payload MessagePayload
		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &payload); err != nil {
			t.Errorf("payload_json: %v", err)
		}
		if payload.Content != "📄 **Ticket Transcript**" {
			t.Errorf("payload content %q", payload.Content)
		}
		file, header, err := r.FormFile("files[0]")
		if err != nil {
			t.Fatalf("files[0]: %v", err)
		}
		defer file.Close()
		if header.Filename != "transcript-1.txt" {
			t.Errorf("filename %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "transcript body" {
			t.Errorf("file content %q", content)
		}
		_ = json.NewEncoder(w).Encode(Message{ID: "m1"})
	}))

	_, err := client.CreateMessageWithFile(context.Background(), "channel-log",
		MessagePayload{Content: "📄 **Ticket Transcript**"}, "transcript-1.txt", []byte("transcript body"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func TestErrorStatusBecomesGatewayFailure(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"message":"Missing Access","code":50001}`)
	}))

	err := client.AddThreadMember(context.Background(), "thread-1", "u1")
	if !apperrors.HasCode(err, "GATEWAY_FAILURE") {
		t.Fatalf("expected GATEWAY_FAILURE, got %v", err)
	}
}

func TestFollowUpPath(t *testing.T) {
	t.Parallel()

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/webhooks/app-1/tok-abc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.FollowUp(context.Background(), "tok-abc", MessagePayload{Content: "done"}); err != nil {
		t.Fatalf("follow up: %v", err)
	}
}
