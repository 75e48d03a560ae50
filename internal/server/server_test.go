package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/home"
	"github.com/promptdeck/promptdeck/internal/server/endpoints"
	"github.com/promptdeck/promptdeck/internal/testutil"
	"github.com/promptdeck/promptdeck/internal/types"
)

// startTestServer boots a full server on a free port with an isolated home
// directory and blocks until it reports ready.
func startTestServer(t *testing.T) string {
	t.Helper()

	cfg := testutil.NewServerConfig(t)
	dir, err := home.New(cfg.HomePath)
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}

	srv, err := New(Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		Home:   dir,
		Logger: cfg.Logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()
	t.Cleanup(func() {
		starter := testutil.StartServer{Cancel: cancel, Done: done}
		starter.Stop()
	})

	if err := testutil.WaitForServer(cfg.URL(), 10*time.Second); err != nil {
		t.Fatalf("server never became ready: %v", err)
	}
	return cfg.URL()
}

// registerAndLogin creates an account and returns its bearer token.
func registerAndLogin(t *testing.T, client *api.Client, email string) string {
	t.Helper()
	ctx := context.Background()

	var reg endpoints.AuthResponse
	err := client.Post(ctx, "/api/auth/register", endpoints.RegisterRequest{
		Email:    email,
		Password: "hunter22",
	}, &reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var login endpoints.AuthResponse
	err = client.Post(ctx, "/api/auth/login", endpoints.LoginRequest{
		Email:    email,
		Password: "hunter22",
	}, &login)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned no token")
	}
	return login.Token
}

func TestServerLifecycle(t *testing.T) {
	url := startTestServer(t)
	client := api.NewClient(url)
	ctx := context.Background()

	var health endpoints.HealthResponse
	if err := client.Get(ctx, "/health", &health); err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("health status = %q", health.Status)
	}

	var status endpoints.StatusResponse
	if err := client.Get(ctx, "/status", &status); err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Store != "ready" {
		t.Errorf("store status = %q", status.Store)
	}
	if len(status.Providers) == 0 {
		t.Error("no providers registered from default settings")
	}
}

func TestItemsLikesAndComments(t *testing.T) {
	url := startTestServer(t)
	client := api.NewClient(url)
	ctx := context.Background()

	token := registerAndLogin(t, client, "author@example.com")
	client.SetToken(token)

	var created endpoints.ItemResponse
	err := client.Post(ctx, "/api/prompts", types.ContentItem{
		Title:    "Test Prompt",
		Template: "Say hello to {{name}}.",
		IsPublic: true,
	}, &created)
	if err != nil {
		t.Fatalf("create prompt: %v", err)
	}
	if created.Item.ID == "" || created.Item.Kind != types.KindPrompt {
		t.Fatalf("created item = %+v", created.Item)
	}

	t.Run("anonymous list sees public items", func(t *testing.T) {
		anon := api.NewClient(url)
		var list endpoints.ItemsResponse
		if err := anon.Get(ctx, "/api/prompts", &list); err != nil {
			t.Fatalf("list prompts: %v", err)
		}
		found := false
		for _, item := range list.Items {
			if item.ID == created.Item.ID {
				found = true
			}
		}
		if !found {
			t.Error("created public prompt missing from anonymous list")
		}
	})

	t.Run("likes are idempotent and counted", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			var like endpoints.LikeResponse
			if err := client.Post(ctx, "/api/items/"+created.Item.ID+"/like", nil, &like); err != nil {
				t.Fatalf("like: %v", err)
			}
		}

		var got endpoints.ItemResponse
		if err := client.Get(ctx, "/api/prompts/"+created.Item.ID, &got); err != nil {
			t.Fatalf("get prompt: %v", err)
		}
		if got.Item.LikeCount != 1 {
			t.Errorf("LikeCount = %d, want 1", got.Item.LikeCount)
		}
	})

	t.Run("comments require auth and are listed", func(t *testing.T) {
		anon := api.NewClient(url)
		err := anon.Post(ctx, "/api/items/"+created.Item.ID+"/comments",
			endpoints.AddCommentRequest{Content: "nope"}, nil)
		if err == nil {
			t.Error("anonymous comment accepted")
		}

		var comment endpoints.CommentResponse
		err = client.Post(ctx, "/api/items/"+created.Item.ID+"/comments",
			endpoints.AddCommentRequest{Content: "nice prompt"}, &comment)
		if err != nil {
			t.Fatalf("comment: %v", err)
		}

		var comments endpoints.CommentsResponse
		if err := client.Get(ctx, "/api/items/"+created.Item.ID+"/comments", &comments); err != nil {
			t.Fatalf("list comments: %v", err)
		}
		if len(comments.Comments) != 1 || comments.Comments[0].Content != "nice prompt" {
			t.Errorf("comments = %+v", comments.Comments)
		}
	})

	t.Run("delete cascades", func(t *testing.T) {
		if err := client.Delete(ctx, "/api/prompts/"+created.Item.ID); err != nil {
			t.Fatalf("delete prompt: %v", err)
		}
		var comments endpoints.CommentsResponse
		if err := client.Get(ctx, "/api/items/"+created.Item.ID+"/comments", &comments); err != nil {
			t.Fatalf("list comments: %v", err)
		}
		if len(comments.Comments) != 0 {
			t.Errorf("comments survived item deletion: %+v", comments.Comments)
		}
	})
}

func TestSettingsReloadProviders(t *testing.T) {
	url := startTestServer(t)
	client := api.NewClient(url)
	ctx := context.Background()

	var setting endpoints.SettingResponse
	err := client.Put(ctx, "/api/settings/providers.huggingface.model",
		endpoints.UpdateSettingRequest{Value: "sim-model-2"}, &setting)
	if err != nil {
		t.Fatalf("update setting: %v", err)
	}
	if setting.Entry == nil || setting.Entry.Value != "sim-model-2" {
		t.Fatalf("entry = %+v", setting.Entry)
	}

	// The registry rebuild must keep the provider registered.
	var status endpoints.StatusResponse
	if err := client.Get(ctx, "/status", &status); err != nil {
		t.Fatalf("status: %v", err)
	}
	found := false
	for _, name := range status.Providers {
		if name == "huggingface" {
			found = true
		}
	}
	if !found {
		t.Error("huggingface missing after settings reload")
	}
}

func TestPlaygroundRunStreams(t *testing.T) {
	url := startTestServer(t)
	client := api.NewClient(url)
	ctx := context.Background()

	token := registerAndLogin(t, client, "tester@example.com")
	client.SetToken(token)

	var created endpoints.ItemResponse
	err := client.Post(ctx, "/api/prompts", types.ContentItem{
		Title:    "Plain Prompt",
		Template: "Summarize the morning news.",
		IsPublic: true,
	}, &created)
	if err != nil {
		t.Fatalf("create prompt: %v", err)
	}

	var session endpoints.SessionState
	err = client.Post(ctx, "/api/playground/sessions",
		endpoints.CreateSessionRequest{Provider: "huggingface"}, &session)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var selected endpoints.SessionState
	err = client.Put(ctx, "/api/playground/sessions/"+session.ID+"/item",
		endpoints.SelectItemRequest{ItemID: created.Item.ID}, &selected)
	if err != nil {
		t.Fatalf("select item: %v", err)
	}
	if len(selected.Transcript) != 1 {
		t.Fatalf("transcript after select = %+v", selected.Transcript)
	}

	var fragments []string
	var final endpoints.SessionState
	err = client.Stream(ctx, "/api/playground/sessions/"+session.ID+"/run",
		endpoints.RunRequest{Input: "go"}, func(event, data string) {
			switch event {
			case "fragment":
				var f string
				if json.Unmarshal([]byte(data), &f) == nil {
					fragments = append(fragments, f)
				}
			case "done":
				json.Unmarshal([]byte(data), &final)
			}
		})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(fragments) == 0 {
		t.Fatal("no fragments streamed")
	}
	full := strings.Join(fragments, "")
	if !strings.Contains(full, "simulated response") {
		t.Errorf("streamed text = %q", full)
	}

	last := final.Transcript[len(final.Transcript)-1]
	if last.Content != full {
		t.Errorf("trailing transcript entry = %q, want streamed text", last.Content)
	}
	if final.Loading {
		t.Error("session still loading after run")
	}
}
