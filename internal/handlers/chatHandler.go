package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hzhao/ConsultAPI/internal/adapter"
	"github.com/hzhao/ConsultAPI/internal/adapter/utils"
	"github.com/hzhao/ConsultAPI/internal/api"
	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/consult"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var (
	chatInstance *ChatHandler
	onceChat     sync.Once
	logCH        *logger_i.Logger
)

type ChatHandler struct {
	consult       consult.Service
	conversations chatModel.ConversationStore
}

func InitChatHandler(consultService consult.Service, conversationStore chatModel.ConversationStore) {
	onceChat.Do(func() {
		chatInstance = &ChatHandler{
			consult:       consultService,
			conversations: conversationStore,
		}
		logCH = logger_i.NewLogger("ChatHandler")
		logCH.Info("Starting chat handler")
	})
}

// ConsultHandler godoc
// @Summary      Run one consultation turn
// @Description  Sends the patient message through the dialogue policy and returns the assistant reply synchronously.
// @Tags         Consultation
// @Accept       json
// @Produce      json
// @Param        request  body      api.ConsultRequest   true  "Patient message and optional conversation ID"
// @Success      200      {object}  api.ConsultResponse
// @Failure      400      {object}  api.JobResponse
// @Failure      404      {object}  api.JobResponse  "Conversation not found"
// @Router       /consultation [post]
func ConsultHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logCH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.ConsultRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	//reject before touching the conversation store: a blank turn must not
	//create a conversation or pollute an existing one's history
	if strings.TrimSpace(requestData.Message) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ConversationId, "message is required")
		return
	}

	ctx := r.Context()
	log := logCH.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	conversation, found := chatInstance.resolveConversation(r, requestData)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, requestData.ConversationId, "conversation not found")
		return
	}

	//history is everything said before this turn
	history := conversation.Messages

	if err := chatInstance.conversations.AddMessage(ctx, conversation.Id, chatModel.Turn{
		Role:      chatModel.RoleUser,
		Content:   requestData.Message,
		Timestamp: time.Now(),
	}); err != nil {
		log.Error("Failed to record user turn", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, conversation.Id, "Internal Server Error")
		return
	}

	result, err := chatInstance.consult.Consult(ctx, requestData.Message, history)
	if err != nil {
		if errors.Is(err, consult.ErrEmptyMessage) {
			WriteErrorResponse(w, http.StatusBadRequest, conversation.Id, "message is required")
			return
		}
		log.Error("Consultation turn failed", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, conversation.Id, "Internal Server Error")
		return
	}

	if err := chatInstance.conversations.AddMessage(ctx, conversation.Id, chatModel.Turn{
		Role:      chatModel.RoleAssistant,
		Content:   result.Response,
		Timestamp: time.Now(),
		Sources:   result.Sources,
	}); err != nil {
		log.Error("Failed to record assistant turn", "error", err)
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToConsultResponse(conversation.Id, result))
}

func ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	conversations, err := chatInstance.conversations.ListConversations(r.Context())
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal Server Error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToConversationSummaries(conversations))
}

func GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	conversation, found := chatInstance.conversations.GetConversation(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "conversation not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToConversationDetail(conversation))
}

func DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	if !chatInstance.conversations.DeleteConversation(r.Context(), id) {
		WriteErrorResponse(w, http.StatusNotFound, id, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func UpdateConversationTitleHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	var requestData api.TitleRequest
	if !decodeBody(w, r, &requestData) {
		return
	}
	if requestData.Title == "" {
		WriteErrorResponse(w, http.StatusBadRequest, id, "title is required")
		return
	}
	if err := chatInstance.conversations.UpdateTitle(r.Context(), id, requestData.Title); err != nil {
		WriteErrorResponse(w, http.StatusNotFound, id, "conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resolveConversation finds the requested conversation, or starts a fresh one
// titled with the opening message when no id was sent.
func (h *ChatHandler) resolveConversation(r *http.Request, requestData api.ConsultRequest) (chatModel.Conversation, bool) {
	ctx := r.Context()
	if requestData.ConversationId != "" {
		return h.conversations.GetConversation(ctx, requestData.ConversationId)
	}

	title := utils.TruncateRunes(requestData.Message, config.ConversationTitleRunes)
	conversation, err := h.conversations.CreateConversation(ctx, title)
	if err != nil {
		logCH.Error("Failed to create conversation", "error", err)
		return chatModel.Conversation{}, false
	}
	return conversation, true
}
