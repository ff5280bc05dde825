package doctree

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrChunksAssigned is returned when a block or document is assigned its children twice.
var ErrChunksAssigned = errors.New("children already assigned")

// Sentence is a contiguous span of text produced by the sentence splitter.
type Sentence struct {
	Text string
}

// WordCount returns the number of whitespace-separated words in the sentence.
func (s Sentence) WordCount() int {
	return len(strings.Fields(s.Text))
}

// Unit is a finalized paragraph or chunk: consecutive sentences joined by single spaces.
type Unit struct {
	ID        int        // Position in the output sequence, 0-based.
	ParentID  string     // Owning block id (chunks) or section label (paragraphs).
	Sentences []Sentence // Member sentences in input order.
	Text      string
	WordCount int
	Embedding []float32 // Centroid of member sentence embeddings; nil when none were supplied.
}

// NewUnit builds an immutable Unit. The sentence and embedding slices are copied.
func NewUnit(id int, parentID string, sentences []Sentence, embedding []float32) Unit {
	sents := make([]Sentence, len(sentences))
	copy(sents, sentences)

	parts := make([]string, len(sents))
	words := 0
	for i, s := range sents {
		parts[i] = s.Text
		words += s.WordCount()
	}

	var emb []float32
	if embedding != nil {
		emb = make([]float32, len(embedding))
		copy(emb, embedding)
	}

	return Unit{
		ID:        id,
		ParentID:  parentID,
		Sentences: sents,
		Text:      strings.Join(parts, " "),
		WordCount: words,
		Embedding: emb,
	}
}

// Block is a span of a document bounded by two adjacent valid headers.
type Block struct {
	ID         int
	StartLabel string
	EndLabel   string
	Text       string
	WordCount  int

	chunks   []Unit
	assigned bool
}

// NewBlock builds a block and computes its word count.
func NewBlock(id int, startLabel, endLabel, text string) *Block {
	return &Block{
		ID:         id,
		StartLabel: startLabel,
		EndLabel:   endLabel,
		Text:       text,
		WordCount:  len(strings.Fields(text)),
	}
}

// SetChunks assigns the block's chunks. It may be called only once.
func (b *Block) SetChunks(chunks []Unit) error {
	if b.assigned {
		return ErrChunksAssigned
	}
	b.chunks = chunks
	b.assigned = true
	return nil
}

// Chunks returns the block's chunks, or nil before chunking.
func (b *Block) Chunks() []Unit {
	return b.chunks
}

// Preview returns at most n characters of the block text.
func (b *Block) Preview(n int) string {
	return preview(b.Text, n)
}

// Document is the whole input text and its blocks.
type Document struct {
	ID    string
	Title string
	Text  string

	blocks   []*Block
	assigned bool
}

// SetBlocks assigns the document's blocks. It may be called only once.
func (d *Document) SetBlocks(blocks []*Block) error {
	if d.assigned {
		return ErrChunksAssigned
	}
	d.blocks = blocks
	d.assigned = true
	return nil
}

// Blocks returns the document blocks in order.
func (d *Document) Blocks() []*Block {
	return d.blocks
}

// AllChunks returns the chunks of every block in document order.
func (d *Document) AllChunks() []Unit {
	var out []Unit
	for _, b := range d.blocks {
		out = append(out, b.Chunks()...)
	}
	return out
}

// Extraction is the output of a parser: raw text plus what was learned while extracting it.
type Extraction struct {
	Title string
	Text  string
	Pages int
	OCR   bool // Text came from optical character recognition.
}

// ScoredUnit is a unit as surfaced to consumers.
type ScoredUnit struct {
	Position    int     `json:"position"` // 1-based
	Parent      string  `json:"parent"`
	Words       int     `json:"words"`
	Score       float64 `json:"coherence_score"` // Rounded to 3 decimals.
	Pairs       int     `json:"sentence_pairs"`
	Incoherent  int     `json:"incoherent_pairs"`
	BelowTarget bool    `json:"below_target"`
	UnderLength bool    `json:"under_length"`
	Text        string  `json:"text"`
}

// Timings splits processing time into its phases.
type Timings struct {
	Extraction time.Duration `json:"extraction_ns"`
	Analysis   time.Duration `json:"analysis_ns"`
	Total      time.Duration `json:"total_ns"`
}

// Metadata is bibliographic information recovered from the raw text.
type Metadata struct {
	Title string `json:"title,omitempty"`
	DOI   string `json:"doi,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Report is the aggregate result of analyzing one document.
type Report struct {
	ID              string       `json:"report_id"`
	Filename        string       `json:"filename"`
	Mode            string       `json:"mode"`
	Pages           int          `json:"pages"`
	OCR             bool         `json:"ocr"`
	Metadata        Metadata     `json:"metadata"`
	Units           []ScoredUnit `json:"units"`
	UnitCount       int          `json:"unit_count"`
	MeanScore       float64      `json:"mean_score"`
	Timings         Timings      `json:"timings"`
	RuntimeExceeded bool         `json:"runtime_exceeded"`
	CreatedAt       time.Time    `json:"created_at"`
}

// SortedByScore returns a copy of the units ordered by descending score.
// Ties keep document order.
func (r *Report) SortedByScore() []ScoredUnit {
	out := make([]ScoredUnit, len(r.Units))
	copy(out, r.Units)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// preview cuts s to at most n runes.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
