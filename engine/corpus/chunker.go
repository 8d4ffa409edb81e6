package corpus

import (
	"strings"

	"github.com/podsage/podsage/engine/domain"
)

// ChunkBody splits a transcript body into segments bounded by a word budget.
// Word count stands in for tokens (roughly 1.3 tokens per word), keeping
// chunks well under the embedding service's input limit.
//
// Paragraphs (blank-line separated) are accumulated into a buffer that is
// flushed whenever the next paragraph would overflow the budget. A single
// paragraph larger than the budget is split further on ". " sentence
// boundaries, with the separator restored onto each fragment, so no chunk
// ever breaks mid-sentence. A lone sentence over the budget is kept whole.
func ChunkBody(body string, bound int) []string {
	if bound <= 0 {
		bound = domain.DefaultChunkSize
	}

	var chunks []string
	var buf strings.Builder
	size := 0

	flush := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			chunks = append(chunks, text)
		}
		buf.Reset()
		size = 0
	}

	for _, para := range strings.Split(body, "\n\n") {
		paraSize := len(strings.Fields(para))

		if paraSize > bound {
			flush()
			for _, sentence := range strings.Split(para, ". ") {
				sentSize := len(strings.Fields(sentence))
				if size+sentSize > bound && buf.Len() > 0 {
					flush()
				}
				buf.WriteString(sentence)
				buf.WriteString(". ")
				size += sentSize
			}
			continue
		}

		if size+paraSize > bound && buf.Len() > 0 {
			flush()
			buf.WriteString(para)
			size = paraSize
		} else {
			buf.WriteString("\n\n")
			buf.WriteString(para)
			size += paraSize
		}
	}
	flush()

	return chunks
}

// ChunkDocument chunks a document body and attaches per-chunk metadata:
// the zero-based chunk index, a copy of the document's front matter, and
// the best-effort speaker hint. Chunk ids are assigned later by the
// ingester, which knows the document ordinal. An empty body yields no
// chunks rather than one empty chunk.
func ChunkDocument(doc domain.Document, bound int) []domain.Chunk {
	texts := ChunkBody(doc.Body, bound)
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			Text:     text,
			Index:    i,
			Meta:     doc.Meta,
			Speakers: ExtractSpeakers(text),
		}
	}
	return chunks
}
