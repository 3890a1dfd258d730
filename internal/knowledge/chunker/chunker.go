package chunker

import (
	"strings"

	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

// Chunk walks text in windows of chunkSize runes, advancing by
// chunkSize-overlap so consecutive chunks share overlap runes of context.
// Rune based on purpose - the corpus is Chinese and a byte window would cut
// characters in half.
//
// The final window is truncated to the remaining text and dropped entirely
// when blank. Pure function, no state.
func Chunk(text string, chunkSize int, overlap int) ([]string, error) {
	if chunkSize <= 0 || overlap <= 0 || overlap >= chunkSize {
		return nil, knowledgeModel.ErrInvalidArgument
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	if len(runes) <= chunkSize {
		whole := strings.TrimSpace(text)
		if whole == "" {
			return nil, nil
		}
		return []string{whole}, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end >= len(runes) {
			//last window - truncate and drop if blank
			tail := strings.TrimSpace(string(runes[start:]))
			if tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
