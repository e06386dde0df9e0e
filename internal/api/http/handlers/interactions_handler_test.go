package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/catalog"
	"github.com/spec-kit/ticket-bot/internal/discord"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/registry"
	"github.com/spec-kit/ticket-bot/internal/service"
)

// stubGateway satisfies discord.Gateway with just enough behavior for
// handler tests.
type stubGateway struct {
	mu       sync.Mutex
	messages map[string][]discord.MessagePayload
}

func newStubGateway() *stubGateway {
	return &stubGateway{messages: make(map[string][]discord.MessagePayload)}
}

func (s *stubGateway) StartPrivateThread(_ context.Context, parentChannelID, name, _ string) (*discord.Channel, error) {
	return &discord.Channel{ID: "thread-1", Name: name, ParentID: parentChannelID}, nil
}

func (s *stubGateway) AddThreadMember(context.Context, string, string) error { return nil }

func (s *stubGateway) GuildMembersWithRole(context.Context, string, string) ([]discord.GuildMember, error) {
	return nil, nil
}

func (s *stubGateway) CreateMessage(_ context.Context, channelID string, payload discord.MessagePayload) (*discord.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[channelID] = append(s.messages[channelID], payload)
	return &discord.Message{ID: "m1"}, nil
}

func (s *stubGateway) CreateMessageWithFile(context.Context, string, discord.MessagePayload, string, []byte) (*discord.Message, error) {
	return &discord.Message{ID: "m2"}, nil
}

func (s *stubGateway) ChannelMessages(context.Context, string, int) ([]discord.Message, error) {
	return nil, nil
}

func (s *stubGateway) Channel(_ context.Context, channelID string) (*discord.Channel, error) {
	return &discord.Channel{ID: channelID}, nil
}

func (s *stubGateway) DeleteChannel(context.Context, string, string) error { return nil }

func (s *stubGateway) EditOriginalResponse(context.Context, string, discord.MessagePayload) error {
	return nil
}

func (s *stubGateway) FollowUp(context.Context, string, discord.MessagePayload) error { return nil }

func newTestApp(t *testing.T) (*fiber.App, *service.TicketLifecycle, *stubGateway) {
	t.Helper()
	gateway := newStubGateway()
	lifecycle := service.NewTicketLifecycle(service.LifecycleConfig{
		GuildID:        "guild-1",
		PanelChannelID: "channel-panel",
		OverseerRoleID: "role-overseer",
	}, service.LifecycleDependencies{
		Registry: registry.New(zap.NewNop()),
		Gateway:  gateway,
		Catalog:  catalog.New(map[string]string{"general": "role-general"}),
		Archiver: service.NewTranscriptArchiver(gateway, zap.NewNop()),
		Logger:   zap.NewNop(),
	})

	handler := NewInteractionsHandler(lifecycle, gateway, observability.NewMetrics(), zap.NewNop())
	app := fiber.New()
	app.Post("/interactions", handler.Handle)
	return app, lifecycle, gateway
}

func postInteraction(t *testing.T, app *fiber.App, interaction discord.Interaction) discord.InteractionResponse {
	t.Helper()
	body, err := json.Marshal(interaction)
	if err != nil {
		t.Fatalf("marshal interaction: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status %d: %s", resp.StatusCode, raw)
	}
	var decoded discord.InteractionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func TestHandlePing(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(t)
	resp := postInteraction(t, app, discord.Interaction{Type: discord.InteractionTypePing})
	if resp.Type != discord.ResponsePong {
		t.Fatalf("response type %d, want pong", resp.Type)
	}
}

func TestHandleClaimUpdatesControls(t *testing.T) {
	t.Parallel()

	app, lifecycle, _ := newTestApp(t)
	creator := &discord.GuildMember{User: &discord.User{ID: "user-1", Username: "alice"}}
	_, thread, err := lifecycle.OpenTicket(context.Background(), creator, "channel-panel", "general")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	resp := postInteraction(t, app, discord.Interaction{
		Type:   discord.InteractionTypeMessageComponent,
		Token:  "tok",
		Member: &discord.GuildMember{User: &discord.User{ID: "agent-1"}, Roles: []string{"role-general"}},
		Data:   &discord.InteractionData{CustomID: "claim_" + thread.ID},
	})
	if resp.Type != discord.ResponseUpdateMessage {
		t.Fatalf("response type %d, want update message", resp.Type)
	}
	if resp.Data.Components[0].Components[0].Label != "Unclaim" {
		t.Fatalf("controls after claim: %#v", resp.Data.Components[0].Components[0])
	}

	record, _ := lifecycle.Ticket(thread.ID)
	if record.ClaimedBy != "agent-1" {
		t.Fatalf("claimed by %q", record.ClaimedBy)
	}
}

func TestHandleClaimForbidden(t *testing.T) {
	t.Parallel()

	app, lifecycle, _ := newTestApp(t)
	creator := &discord.GuildMember{User: &discord.User{ID: "user-1", Username: "alice"}}
	_, thread, err := lifecycle.OpenTicket(context.Background(), creator, "channel-panel", "general")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	resp := postInteraction(t, app, discord.Interaction{
		Type:   discord.InteractionTypeMessageComponent,
		Member: &discord.GuildMember{User: &discord.User{ID: "rando"}, Roles: []string{"role-nothing"}},
		Data:   &discord.InteractionData{CustomID: "claim_" + thread.ID},
	})
	if resp.Type != discord.ResponseChannelMessage {
		t.Fatalf("response type %d", resp.Type)
	}
	if resp.Data.Flags&discord.MessageFlagEphemeral == 0 {
		t.Fatal("rejection not ephemeral")
	}
	if !strings.Contains(resp.Data.Content, "permission") {
		t.Fatalf("rejection text %q", resp.Data.Content)
	}
}

func TestHandleCloseUnknownTicket(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(t)
	resp := postInteraction(t, app, discord.Interaction{
		Type:   discord.InteractionTypeMessageComponent,
		Member: &discord.GuildMember{User: &discord.User{ID: "agent-1"}},
		Data:   &discord.InteractionData{CustomID: "close_missing"},
	})
	if !strings.Contains(resp.Data.Content, "not found") {
		t.Fatalf("reply %q", resp.Data.Content)
	}
	if resp.Data.Flags&discord.MessageFlagEphemeral == 0 {
		t.Fatal("reply not ephemeral")
	}
}

func TestHandleUnknownCustomID(t *testing.T) {
	t.Parallel()

	app, _, _ := newTestApp(t)
	resp := postInteraction(t, app, discord.Interaction{
		Type:   discord.InteractionTypeMessageComponent,
		Member: &discord.GuildMember{User: &discord.User{ID: "agent-1"}},
		Data:   &discord.InteractionData{CustomID: "mystery_button"},
	})
	if !strings.Contains(resp.Data.Content, "not recognized") {
		t.Fatalf("reply %q", resp.Data.Content)
	}
}

func TestHandleSetupCommand(t *testing.T) {
	t.Parallel()

	app, _, gateway := newTestApp(t)

	// Without the administrator bit.
	resp := postInteraction(t, app, discord.Interaction{
		Type:   discord.InteractionTypeApplicationCommand,
		Member: &discord.GuildMember{User: &discord.User{ID: "user-1"}, Permissions: "0"},
		Data:   &discord.InteractionData{Name: "setuptickets"},
	})
	if !strings.Contains(resp.Data.Content, "Administrator") {
		t.Fatalf("reply %q", resp.Data.Content)
	}

	// With it.
	resp = postInteraction(t, app, discord.Interaction{
		Type:   discord.InteractionTypeApplicationCommand,
		Member: &discord.GuildMember{User: &discord.User{ID: "admin-1"}, Permissions: "8"},
		Data:   &discord.InteractionData{Name: "setuptickets"},
	})
	if !strings.Contains(resp.Data.Content, "panel posted") {
		t.Fatalf("reply %q", resp.Data.Content)
	}
	if len(gateway.messages["channel-panel"]) == 0 {
		t.Fatal("panel not posted to panel channel")
	}
}

func TestIsAdministrator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		permissions string
		want        bool
	}{
		{"8", true},
		{"2147483647", true},
		{"0", false},
		{"4", false},
		{"", false},
		{"not-a-number", false},
	}
	for _, tt := range tests {
		got := isAdministrator(&discord.GuildMember{Permissions: tt.permissions})
		if got != tt.want {
			t.Fatalf("isAdministrator(%q) = %v, want %v", tt.permissions, got, tt.want)
		}
	}
}
