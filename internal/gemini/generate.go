package gemini

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/habiliai/tutorwise/chat"
	"github.com/habiliai/tutorwise/errors"
	"github.com/habiliai/tutorwise/extractor"
	"google.golang.org/genai"
)

var (
	_ chat.Generator            = (*Client)(nil)
	_ extractor.Captioner       = (*Client)(nil)
	_ extractor.VideoSummarizer = (*Client)(nil)
)

func (c *Client) Generate(ctx context.Context, req chat.GenerateRequest) (answer string, err error) {
	started := time.Now()
	defer func() { c.observe("generate", started, err) }()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	return c.generateText(ctx, "generate", c.llmModel, genai.Text(req.Prompt), config)
}

// Caption sends the image inline and asks for a description.
func (c *Client) Caption(ctx context.Context, path string, mimeType string) (caption string, err error) {
	started := time.Now()
	defer func() { c.observe("caption", started, err) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read image")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(c.captionPrompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	return c.generateText(ctx, "caption", c.imageModel, contents, nil)
}

// Summarize uploads the video, waits for it to become active and asks for a
// summary followed by a quiz. The uploaded file is deleted afterwards.
func (c *Client) Summarize(ctx context.Context, path string, mimeType string) (summary string, err error) {
	started := time.Now()
	defer func() { c.observe("summarize", started, err) }()

	file, err := c.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return "", &remoteError{op: "upload video", err: err}
	}
	defer func() {
		if _, err := c.client.Files.Delete(context.WithoutCancel(ctx), file.Name, nil); err != nil {
			c.logger.Warn("failed to delete uploaded video", "name", file.Name, "err", err)
		}
	}()

	file, err = c.waitActive(ctx, file)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, file.MIMEType),
			genai.NewPartFromText(c.videoPrompt),
		}, genai.RoleUser),
	}

	return c.generateText(ctx, "summarize", c.videoModel, contents, nil)
}

func (c *Client) waitActive(ctx context.Context, file *genai.File) (*genai.File, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		switch file.State {
		case genai.FileStateActive:
			return file, nil
		case genai.FileStateFailed:
			return nil, &remoteError{op: "upload video", err: errors.Errorf("file %s failed processing", file.Name)}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var err error
		file, err = c.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, &remoteError{op: "poll video", err: err}
		}
	}
}

func (c *Client) generateText(ctx context.Context, op, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", &remoteError{op: op, err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &remoteError{op: op, err: errors.New("empty response")}
	}
	return text, nil
}
