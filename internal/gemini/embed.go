package gemini

import (
	"context"
	"time"

	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/memory"
	"google.golang.org/genai"
)

var _ memory.Embedder = (*Client)(nil)

func (c *Client) Embed(ctx context.Context, taskType memory.TaskType, text string) (embedding []float32, err error) {
	started := time.Now()
	defer func() { c.observe("embed", started, err) }()

	dim := c.embedDim
	resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             taskType.String(),
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, &remoteError{op: "embed", err: err}
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, &remoteError{op: "embed", err: errors.New("no embedding returned")}
	}

	values := resp.Embeddings[0].Values
	if len(values) != int(c.embedDim) {
		return nil, &remoteError{op: "embed", err: errors.Errorf("got %d dimensions, want %d", len(values), c.embedDim)}
	}

	return values, nil
}
