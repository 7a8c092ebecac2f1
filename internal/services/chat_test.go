package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/coach"
)

func (e *env) chatService(gen ChatGenerator) ChatService {
	return NewChatService(e.log, gen, e.profileService(), e.chat, time.Second)
}

func TestChatSend(t *testing.T) {
	llmReply := `{"message":"PCOS is a hormonal condition.","ingredients":[{"name":"Flaxseed","description":"","emoji":"","lazy":"","tasty":"","healthy":""}]}`
	dietReply := "```json\n" + `{"message":"Try these.","ingredients":[` +
		`{"name":"Lentils","description":"d","emoji":"🫘","lazy":"l","tasty":"t","healthy":"h"},` +
		`{"name":"Kale","description":"d","emoji":"🥬","lazy":"l","tasty":"t","healthy":"h"},` +
		`{"name":"Salmon","description":"d","emoji":"🐟","lazy":"l","tasty":"t","healthy":"h"},` +
		`{"name":"Walnuts","description":"d","emoji":"🌰","lazy":"l","tasty":"t","healthy":"h"}]}` + "\n```"

	tests := []struct {
		name      string
		gen       ChatGenerator
		message   string
		wantMsg   string
		wantCards int
		wantCalls int
	}{
		{
			name:      "phase question answered without the model",
			gen:       &fakeGen{reply: llmReply},
			message:   "What should I eat during my luteal phase?",
			wantMsg:   coach.PhaseReply(nutrition.PhaseLuteal).Message,
			wantCards: 3,
		},
		{
			name:      "non-diet reply drops cards",
			gen:       &fakeGen{reply: llmReply},
			message:   "Tell me about PCOS",
			wantMsg:   "PCOS is a hormonal condition.",
			wantCards: 0,
			wantCalls: 1,
		},
		{
			name:      "diet reply capped",
			gen:       &fakeGen{reply: dietReply},
			message:   "What foods help with bloating?",
			wantMsg:   "Try these.",
			wantCards: coach.MaxIngredients,
			wantCalls: 1,
		},
		{
			name:      "model failure falls back to canned reply",
			gen:       &fakeGen{err: errors.New("rate limited")},
			message:   "Can you make me a meal plan?",
			wantMsg:   coach.Fallback("Can you make me a meal plan?", "").Message,
			wantCards: 1,
			wantCalls: 1,
		},
		{
			name:      "no generator uses canned reply",
			gen:       nil,
			message:   "What should I eat for breakfast?",
			wantMsg:   coach.Fallback("What should I eat for breakfast?", "").Message,
			wantCards: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			ctx := e.user(t)
			reply, err := e.chatService(tc.gen).Send(ctx, "  "+tc.message+"  ")
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if reply.Message != tc.wantMsg {
				t.Fatalf("message=%q want %q", reply.Message, tc.wantMsg)
			}
			if len(reply.Ingredients) != tc.wantCards {
				t.Fatalf("cards=%d want %d", len(reply.Ingredients), tc.wantCards)
			}
			if fg, ok := tc.gen.(*fakeGen); ok && fg.callCount() != tc.wantCalls {
				t.Fatalf("generator calls=%d want %d", fg.callCount(), tc.wantCalls)
			}
		})
	}
}

func TestChatSendRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	svc := e.chatService(nil)

	_, err := svc.Send(context.Background(), "hello")
	wantAPIError(t, err, 401, "unauthorized")

	ctx := e.user(t)
	_, err = svc.Send(ctx, "   ")
	wantAPIError(t, err, 400, "invalid_request")

	_, err = svc.Send(ctx, strings.Repeat("a", MaxChatMessageLen+1))
	wantAPIError(t, err, 400, "invalid_request")
}

func TestChatHistoryAndLogout(t *testing.T) {
	e := newEnv(t)
	ctx := e.user(t)
	svc := e.chatService(nil)

	empty, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty history=%v", empty)
	}

	for _, m := range []string{"Tell me about endometriosis", "What should I eat during menstruation?"} {
		if _, err := svc.Send(ctx, m); err != nil {
			t.Fatalf("Send(%q): %v", m, err)
		}
	}
	hist, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history=%d want 2", len(hist))
	}
	seen := map[string]bool{}
	for _, h := range hist {
		seen[h.Message] = true
		if h.Response == "" {
			t.Fatalf("stored message without response: %+v", h)
		}
	}
	if !seen["Tell me about endometriosis"] {
		t.Fatalf("history missing sent message: %v", seen)
	}

	other := e.user(t)
	if h, _ := svc.History(other); len(h) != 0 {
		t.Fatalf("history leaked across users: %d", len(h))
	}

	auth := NewAuthService(e.db, e.log, e.users, e.chat, "secret", time.Hour)
	if err := auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	hist, err = svc.History(ctx)
	if err != nil || len(hist) != 0 {
		t.Fatalf("history after logout=%d err=%v", len(hist), err)
	}
}
