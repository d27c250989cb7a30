// Package chunk splits collected documents into overlapping text chunks
// sized for embedding.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/riftlabs/riftqa/internal/collect"
	"github.com/riftlabs/riftqa/internal/config"
)

// Chunk is one splitter output. ID is a content hash, so re-chunking the same
// document yields the same IDs and appends become idempotent upserts.
type Chunk struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// Splitter wraps a recursive character splitter with the configured size and
// overlap.
type Splitter struct {
	inner textsplitter.RecursiveCharacter
}

// NewSplitter creates a splitter from chunking configuration. The
// configuration is assumed validated: overlap must be smaller than size.
func NewSplitter(cfg *config.ChunkingConfig) *Splitter {
	return &Splitter{
		inner: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.Size),
			textsplitter.WithChunkOverlap(cfg.Overlap),
		),
	}
}

// Split chunks every document, carrying the document metadata onto each chunk
// and adding a zero-based chunk index.
func (s *Splitter) Split(docs []collect.Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		parts, err := s.inner.SplitText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("split document: %w", err)
		}
		for i, text := range parts {
			meta := make(map[string]any, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				meta[k] = v
			}
			meta["chunk_index"] = i
			chunks = append(chunks, Chunk{
				ID:       chunkID(text, meta),
				Text:     text,
				Metadata: meta,
			})
		}
	}
	return chunks, nil
}

// chunkID derives a stable identifier from the chunk text and its metadata.
// Metadata keys are hashed in sorted order so map iteration does not leak
// into the ID.
func chunkID(text string, meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%v;", k, meta[k])
	}
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
