package domain

// BlockType identifies the kind of a content block.
type BlockType string

const (
	BlockText      BlockType = "text"
	BlockReasoning BlockType = "reasoning"
	BlockFeature   BlockType = "feature"
	BlockError     BlockType = "error"
)

// ContentBlock is a typed fragment of a reply.
type ContentBlock struct {
	Type      BlockType `json:"type"`
	Text      string    `json:"text,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"`
	Feature   string    `json:"feature,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

func ReasoningBlock(reasoning string) ContentBlock {
	return ContentBlock{Type: BlockReasoning, Reasoning: reasoning}
}

func FeatureBlock(feature string) ContentBlock {
	return ContentBlock{Type: BlockFeature, Feature: feature}
}

func ErrorBlock(msg string) ContentBlock {
	return ContentBlock{Type: BlockError, Error: msg}
}

// RoutingResult is the terminal artifact of one message. It is not mutated after return.
type RoutingResult struct {
	Response      string         `json:"response"`
	ContentBlocks []ContentBlock `json:"content_blocks"`
	Intent        Intent         `json:"intent"`
	Confidence    float64        `json:"confidence"`
	CartState     []CartLine     `json:"cart_state"`
	Total         float64        `json:"total"`

	// Reasoning is the model deliberation split from the visible answer, if any.
	// It is delivered to clients through ContentBlocks only.
	Reasoning string `json:"-"`
}

// HasReasoning reports whether a reasoning segment was present.
func (r RoutingResult) HasReasoning() bool {
	for _, b := range r.ContentBlocks {
		if b.Type == BlockReasoning {
			return true
		}
	}
	return false
}
