package retrieval

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/pkg/logger_i"
)

// LexicalRetriever is the default scoring backend: substring candidacy over
// the first few query terms, scored by how often the chunk's opening runes
// appear inside the query. Cheap, no external calls, good enough to ground a
// consultation against a small corpus.
type LexicalRetriever struct {
	corpus CorpusProvider
	logger *logger_i.Logger
}

func NewLexicalRetriever(corpus CorpusProvider) *LexicalRetriever {
	return &LexicalRetriever{
		corpus: corpus,
		logger: logger_i.NewLogger("Lexical Retriever :"),
	}
}

func (r *LexicalRetriever) Search(ctx context.Context, query string, k int, categoryId string) ([]Result, error) {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	loweredQuery := strings.ToLower(query)
	terms := queryTerms(loweredQuery, config.QueryTermLimit)
	if len(terms) == 0 {
		return nil, nil
	}

	var results []Result
	for _, doc := range r.corpus.EnabledDocuments(categoryId) {
		for _, chunk := range doc.Chunks {
			if !isCandidate(strings.ToLower(chunk.Content), terms) {
				//non-candidates are excluded outright, never scored as zero
				continue
			}
			results = append(results, Result{
				Content:    chunk.Content,
				Filename:   doc.OriginalFilename,
				DocId:      doc.Id,
				CategoryId: doc.CategoryId,
				Score:      prefixScore(chunk.Content, loweredQuery),
			})
		}
	}

	//stable keeps ties in corpus order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	r.logger.Debug("Lexical search done", "terms", terms, "matches", len(results))
	return results, nil
}

func isCandidate(loweredContent string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(loweredContent, t) {
			return true
		}
	}
	return false
}

// prefixScore counts how many times the chunk's first 50 runes occur inside
// the query - the short-text containment heuristic this corpus ranks by.
func prefixScore(content string, loweredQuery string) float64 {
	runes := []rune(strings.ToLower(content))
	if len(runes) > config.ScorePrefixRunes {
		runes = runes[:config.ScorePrefixRunes]
	}
	prefix := string(runes)
	if prefix == "" {
		return 0
	}
	return float64(strings.Count(loweredQuery, prefix))
}

// queryTerms splits a lowered query into terms: whitespace-delimited words
// for alphabetic script, one term per Han rune for Chinese - queries like
// "头痛发热" carry several symptoms in a single unsegmented run.
func queryTerms(loweredQuery string, limit int) []string {
	var terms []string
	var word []rune

	flush := func() {
		if len(word) > 0 {
			terms = append(terms, string(word))
			word = word[:0]
		}
	}

	for _, r := range loweredQuery {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			terms = append(terms, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			word = append(word, r)
		default:
			flush()
		}
	}
	flush()

	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}
