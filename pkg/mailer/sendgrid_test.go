package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/shopzone-backend/pkg/config"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(config.SendgridConfig{DefaultFrom: "noreply@shopzone.dev"}, nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient(config.SendgridConfig{APIKey: "sg-key"}, nil); err == nil {
		t.Fatal("expected error for missing from address")
	}
}

func TestSendBuildsSendgridPayload(t *testing.T) {
	var got sendRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client, err := NewClient(config.SendgridConfig{APIKey: "sg-key", DefaultFrom: "noreply@shopzone.dev"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.endpoint = srv.URL

	err = client.Send(context.Background(), Message{
		To:      "shopper@example.com",
		Subject: "Order confirmed",
		Body:    "Thanks for your order.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if auth != "Bearer sg-key" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if len(got.Personalizations) != 1 || len(got.Personalizations[0].To) != 1 {
		t.Fatalf("unexpected personalizations: %+v", got.Personalizations)
	}
	if got.Personalizations[0].To[0].Email != "shopper@example.com" {
		t.Fatalf("unexpected recipient %q", got.Personalizations[0].To[0].Email)
	}
	if got.From.Email != "noreply@shopzone.dev" {
		t.Fatalf("unexpected from %q", got.From.Email)
	}
	if got.Subject != "Order confirmed" {
		t.Fatalf("unexpected subject %q", got.Subject)
	}
	if len(got.Content) != 1 || got.Content[0].Value != "Thanks for your order." {
		t.Fatalf("unexpected content: %+v", got.Content)
	}
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(config.SendgridConfig{APIKey: "sg-key", DefaultFrom: "noreply@shopzone.dev"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.endpoint = srv.URL

	err = client.Send(context.Background(), Message{To: "a@b.c", Subject: "x", Body: "y"})
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
}

func TestSendValidatesMessage(t *testing.T) {
	client, err := NewClient(config.SendgridConfig{APIKey: "sg-key", DefaultFrom: "noreply@shopzone.dev"}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if err := client.Send(context.Background(), Message{To: "a@b.c"}); err == nil {
		t.Fatal("expected error for missing subject")
	}
}
