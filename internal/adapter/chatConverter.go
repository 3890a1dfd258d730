package adapter

import (
	"github.com/hzhao/ConsultAPI/internal/api"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

func ToConsultResponse(conversationId string, result chatModel.ConsultResult) api.ConsultResponse {
	return api.ConsultResponse{
		ConversationId:    conversationId,
		Response:          result.Response,
		Sources:           result.Sources,
		NeedMoreInfo:      result.NeedMoreInfo,
		CollectedSymptoms: result.CollectedSymptoms,
	}
}

func ToConversationSummaries(conversations []chatModel.Conversation) []api.ConversationSummary {
	summaries := make([]api.ConversationSummary, len(conversations))
	for i, conversation := range conversations {
		summaries[i] = api.ConversationSummary{
			Id:           conversation.Id,
			Title:        conversation.Title,
			CreatedAt:    conversation.CreatedAt,
			UpdatedAt:    conversation.UpdatedAt,
			MessageCount: len(conversation.Messages),
		}
	}
	return summaries
}

func ToConversationDetail(conversation chatModel.Conversation) api.ConversationDetail {
	messages := make([]api.TurnResponse, len(conversation.Messages))
	for i, turn := range conversation.Messages {
		messages[i] = api.TurnResponse{
			Role:      string(turn.Role),
			Content:   turn.Content,
			Timestamp: turn.Timestamp,
			Sources:   turn.Sources,
		}
	}
	return api.ConversationDetail{
		Id:        conversation.Id,
		Title:     conversation.Title,
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
		Messages:  messages,
	}
}
