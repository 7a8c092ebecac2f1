package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/winnie-backend/internal/data/repos"
	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/coach"
	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

const (
	DefaultChatTimeout = 8 * time.Second
	MaxChatMessageLen  = 4000
	chatHistoryLimit   = 50
)

// ChatGenerator is the slice of the LLM client the coach needs.
type ChatGenerator interface {
	GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error)
}

type ChatService interface {
	Send(ctx context.Context, message string) (coach.Reply, error)
	// Answer replies to message for an anonymous profile without saving it.
	Answer(ctx context.Context, message string) (coach.Reply, coach.Source)
	History(ctx context.Context) ([]*types.ChatMessage, error)
}

type chatService struct {
	log      *logger.Logger
	gen      ChatGenerator
	profiles ProfileService
	chatRepo repos.ChatMessageRepo
	timeout  time.Duration
}

// NewChatService builds the coach. A nil generator always answers from the
// canned replies.
func NewChatService(log *logger.Logger, gen ChatGenerator, profiles ProfileService, chatRepo repos.ChatMessageRepo, timeout time.Duration) ChatService {
	if timeout <= 0 {
		timeout = DefaultChatTimeout
	}
	return &chatService{
		log:      log.With("service", "ChatService"),
		gen:      gen,
		profiles: profiles,
		chatRepo: chatRepo,
		timeout:  timeout,
	}
}

func (cs *chatService) Send(ctx context.Context, message string) (coach.Reply, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return coach.Reply{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return coach.Reply{}, invalidRequest(fmt.Errorf("message is required"))
	}
	if len(message) > MaxChatMessageLen {
		return coach.Reply{}, invalidRequest(fmt.Errorf("message exceeds %d bytes", MaxChatMessageLen))
	}
	profile, _, err := cs.profiles.Optional(ctx, userID)
	if err != nil {
		return coach.Reply{}, err
	}

	reply, source := cs.answer(ctx, message, profile)
	observability.Current().ObserveChat(string(source))

	if _, err := cs.chatRepo.Create(ctx, nil, &types.ChatMessage{
		UserID:      userID,
		Message:     message,
		Response:    reply.Message,
		Ingredients: datatypes.NewJSONSlice(reply.Ingredients),
	}); err != nil {
		cs.log.Warn("Failed to save chat message", "user_id", userID, "error", err)
		return coach.Reply{}, fmt.Errorf("save chat message: %w", err)
	}
	return reply, nil
}

func (cs *chatService) Answer(ctx context.Context, message string) (coach.Reply, coach.Source) {
	return cs.answer(ctx, strings.TrimSpace(message), nutrition.Profile{})
}

func (cs *chatService) answer(ctx context.Context, message string, profile nutrition.Profile) (coach.Reply, coach.Source) {
	if phase, ok := coach.DetectPhase(message); ok {
		return coach.PhaseReply(phase), coach.SourcePhase
	}
	if cs.gen == nil {
		return coach.Fallback(message, profile.Diet), coach.SourceFallback
	}

	ctx, cancel := context.WithTimeout(ctx, cs.timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, "chat.generate")
	defer span.End()

	diet := coach.IsDietQuestion(message)
	raw, err := cs.gen.GenerateJSONText(ctx, coach.SystemPrompt(profile, diet), message, coach.SchemaName, coach.ReplySchema())
	if err != nil {
		cs.log.Warn("Chat generation failed, using canned reply", "error", err)
		return coach.Fallback(message, profile.Diet), coach.SourceFallback
	}
	reply, err := coach.ParseReply(raw, diet)
	if err != nil {
		span.RecordError(err)
		cs.log.Warn("Chat reply unparseable, using canned reply", "error", err)
		return coach.Fallback(message, profile.Diet), coach.SourceFallback
	}
	return reply, coach.SourceLLM
}

func (cs *chatService) History(ctx context.Context) ([]*types.ChatMessage, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := cs.chatRepo.ListByUser(ctx, nil, userID, chatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	if msgs == nil {
		msgs = []*types.ChatMessage{}
	}
	return msgs, nil
}
