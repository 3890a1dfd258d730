package consult

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
	"github.com/hzhao/ConsultAPI/internal/metrics"
	"github.com/hzhao/ConsultAPI/internal/rag/llm"
	"github.com/hzhao/ConsultAPI/internal/rag/retrieval"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

var ErrEmptyMessage = errors.New("message must not be empty")

// Service runs one consultation turn: accumulate signals from the history,
// pick the dialogue state, ground the reply in retrieved knowledge and make
// exactly one llm call.
type Service interface {
	Consult(ctx context.Context, message string, history []chatModel.Turn) (chatModel.ConsultResult, error)
	State(history []chatModel.Turn) chatModel.DialogueState
}

type service struct {
	retriever   retrieval.Retriever
	provider    llm.Provider
	accumulator *Accumulator
	threshold   int
	logger      *logger_i.Logger
}

func NewService(retriever retrieval.Retriever, provider llm.Provider, threshold int) Service {
	if threshold <= 0 {
		threshold = config.DiagnosisThreshold
	}
	return &service{
		retriever:   retriever,
		provider:    provider,
		accumulator: NewAccumulator(nil),
		threshold:   threshold,
		logger:      logger_i.NewLogger("consult"),
	}
}

func (s *service) State(history []chatModel.Turn) chatModel.DialogueState {
	if len(s.accumulator.Extract(history)) >= s.threshold {
		return chatModel.StateReadyToDiagnose
	}
	return chatModel.StateGathering
}

func (s *service) Consult(ctx context.Context, message string, history []chatModel.Turn) (chatModel.ConsultResult, error) {
	start := time.Now()
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if strings.TrimSpace(message) == "" {
		return chatModel.ConsultResult{}, ErrEmptyMessage
	}

	signals := s.accumulator.Extract(history)
	state := chatModel.StateGathering
	if len(signals) >= s.threshold {
		state = chatModel.StateReadyToDiagnose
	}
	defer func() {
		metrics.CaptureConsultTurnMetrics(string(state), time.Since(start))
	}()

	grounding, sources := s.ground(ctx, message, log)

	var instruction string
	if state == chatModel.StateReadyToDiagnose {
		instruction = buildDiagnoseInstruction(signals, message)
	} else {
		instruction = buildGatherInstruction(grounding, signals, history, message)
	}

	response, err := s.complete(ctx, instruction)
	if err != nil {
		//the patient still gets an answer, but the failed turn must not
		//poison the accumulated symptom list
		log.Error("LLM call failed, serving apology", "error", err)
		return chatModel.ConsultResult{
			Response:          config.ApologyMessage,
			Sources:           sources,
			NeedMoreInfo:      true,
			CollectedSymptoms: signals,
		}, nil
	}

	return chatModel.ConsultResult{
		Response:          response,
		Sources:           sources,
		NeedMoreInfo:      state == chatModel.StateGathering,
		CollectedSymptoms: s.fold(signals, message),
	}, nil
}

// ground retrieves knowledge for the current message. Retrieval failures and
// empty corpora degrade to a fixed fallback snippet rather than failing the
// turn.
func (s *service) ground(ctx context.Context, message string, log *logger_i.Logger) (string, []string) {
	retrievalStart := time.Now()
	results, err := s.retriever.Search(ctx, message, config.TopKResults, "")
	metrics.CaptureExecutionMetrics("retrieval", time.Since(retrievalStart))

	if err != nil {
		log.Error("Retrieval failed, using fallback grounding", "error", err)
		return config.FallbackGrounding, nil
	}
	if len(results) == 0 {
		return config.FallbackGrounding, nil
	}

	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}

	var sources []string
	seen := make(map[string]bool)
	for _, r := range results {
		if len(sources) == config.SourcesLimit {
			break
		}
		if r.Filename == "" || seen[r.Filename] {
			continue
		}
		seen[r.Filename] = true
		sources = append(sources, r.Filename)
	}
	return strings.Join(contents, "\n"), sources
}

func (s *service) complete(ctx context.Context, instruction string) (string, error) {
	if s.provider == nil {
		return "", llm.ErrUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, config.LLMCallTimeout)
	defer cancel()

	llmStart := time.Now()
	response, err := s.provider.Complete(callCtx, SystemPrompt, instruction)
	metrics.CaptureExecutionMetrics("llm", time.Since(llmStart))
	return response, err
}

// fold appends what the current message contributed to the symptom list:
// every recognized keyword in it, or the raw message itself when nothing
// matched (so unrecognized complaints still surface for the next turn).
func (s *service) fold(signals []string, message string) []string {
	seen := make(map[string]bool, len(signals))
	for _, sig := range signals {
		seen[sig] = true
	}

	folded := append([]string{}, signals...)
	matched := s.accumulator.SignalsIn(message)
	for _, sig := range matched {
		if !seen[sig] {
			seen[sig] = true
			folded = append(folded, sig)
		}
	}
	if len(matched) == 0 && !seen[message] {
		folded = append(folded, message)
	}
	return folded
}
