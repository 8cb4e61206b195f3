package embedding

// Tokenizer produces BERT-style model inputs (input_ids, attention_mask,
// token_type_ids) for the ONNX path.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer splits on whitespace and hashes words into token IDs. It
// is not a real WordPiece vocabulary; it exists so the ONNX session can run
// against models whose tokenizer ships separately, and as the hashing base
// for the mock embedder.
type SimpleTokenizer struct{}

// Tokenize produces padded token IDs up to maxTokens, with [CLS]/[SEP]
// markers and an attention mask covering the real tokens.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = 101 // [CLS]
	attentionMask[0] = 1

	pos := 1
	for _, word := range SplitWords(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(HashString(word) % 30000)
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = 102 // [SEP]
		attentionMask[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// SplitWords returns the non-empty whitespace-separated words of text.
func SplitWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		switch r {
		case ' ', '\n', '\t', '\r':
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
