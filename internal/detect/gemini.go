package detect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the vision model used when GEMINI_MODEL is not set.
const DefaultModel = "gemini-1.5-flash"

// Engine is a Gemini-backed detector and audit client. API failures
// propagate to the caller; they are never reported as zero detections.
type Engine struct {
	APIKey string
	Model  string
}

// NewEngine creates an Engine. An empty model falls back to DefaultModel.
func NewEngine(apiKey, model string) *Engine {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &Engine{APIKey: strings.TrimSpace(apiKey), Model: model}
}

// Configured reports whether an API key is available.
func (e *Engine) Configured() bool {
	return e.APIKey != ""
}

const detectPrompt = `You review manufacturing drawings before they are sent to
an external supplier. Find every region that contains information identifying
the customer and must be blacked out: company logos, company names, phone and
fax numbers, e-mail addresses, postal addresses, web addresses, and the
contact rows of the title block. Do not mark dimensions, tolerances or
technical notes.

Return ONLY a JSON object of the form
{"regions":[{"label":"<short description>","box":[ymin,xmin,ymax,xmax]}]}
with box coordinates on a 0-1000 scale relative to the image. Return
{"regions":[]} if nothing needs masking. Any text outside the JSON is an
error.`

// Detect asks the model for sensitive regions in the encoded image. An
// empty region list is a valid result.
func (e *Engine) Detect(ctx context.Context, imgBytes []byte, mime string) ([]Region, error) {
	out, err := e.generate(ctx, true, genai.Text(detectPrompt), imageBlob(imgBytes, mime))
	if err != nil {
		return nil, fmt.Errorf("gemini detect: %w", err)
	}
	regions, err := parseRegions(out)
	if err != nil {
		return nil, fmt.Errorf("gemini detect: %w", err)
	}
	return regions, nil
}

const auditPrompt = `Role: 资深 DFM 审核工程师
Task: 分析图纸，提取关键要素。
Output Format: 请直接输出 Markdown 表格，包含列：[审核项], [状态], [提取内容/问题]。
关键审核项: 1.材质 2.数量 3.公差 4.表面处理。`

// Audit runs the drawing pre-review and returns the Markdown report.
func (e *Engine) Audit(ctx context.Context, imgBytes []byte, mime string) (string, error) {
	out, err := e.generate(ctx, false, genai.Text(auditPrompt), imageBlob(imgBytes, mime))
	if err != nil {
		return "", fmt.Errorf("gemini audit: %w", err)
	}
	return out, nil
}

// generate sends one prompt and returns the first text part, retrying
// transient failures with a short linear backoff.
func (e *Engine) generate(ctx context.Context, jsonOnly bool, parts ...genai.Part) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	cfg := genai.GenerationConfig{Temperature: ptrFloat32(0)}
	if jsonOnly {
		cfg.ResponseMIMEType = "application/json"
	}
	m.GenerationConfig = cfg

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 300 * time.Millisecond):
			}
			continue
		}
		txt := firstText(resp)
		if strings.TrimSpace(txt) == "" {
			return "", errors.New("empty response")
		}
		return stripCodeFences(strings.TrimSpace(txt)), nil
	}
	return "", lastErr
}

// parseRegions accepts either the documented wrapper object or a bare
// array, which some model revisions emit despite the prompt.
func parseRegions(out string) ([]Region, error) {
	var wrapper struct {
		Regions []Region `json:"regions"`
	}
	if err := json.Unmarshal([]byte(out), &wrapper); err == nil {
		return wrapper.Regions, nil
	}
	var bare []Region
	if err := json.Unmarshal([]byte(out), &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("bad JSON: %q", truncate(out, 200))
}

func imageBlob(data []byte, mime string) genai.Part {
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return &genai.Blob{MIMEType: mime, Data: data}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

// stripCodeFences removes a surrounding ```json fence if the model added
// one anyway.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func ptrFloat32(v float32) *float32 { return &v }
