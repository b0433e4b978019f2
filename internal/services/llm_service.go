package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/prep-pilot/internal/logger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

var ErrLLMDisabled = errors.New("LLM is not configured")

const maxJobPostingChars = 20000

type LLMService struct {
	Client llms.Model
	log    *logger.Logger
}

// NewLLMService builds a Gemini-backed client.
func NewLLMService(ctx context.Context, apiKey, model string, log *logger.Logger) (*LLMService, error) {
	if apiKey == "" {
		return nil, ErrLLMDisabled
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return NewLLMServiceWithModel(llm, log), nil
}

// NewLLMServiceWithModel wraps any langchaingo model.
func NewLLMServiceWithModel(model llms.Model, log *logger.Logger) *LLMService {
	return &LLMService{Client: model, log: log.With("service", "LLMService")}
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "job_description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

// ExtractJobDetails takes raw posting HTML and returns the model's JSON answer.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (string, error) {
	if s == nil || s.Client == nil {
		return "", ErrLLMDisabled
	}
	if len(rawHTML) > maxJobPostingChars {
		rawHTML = rawHTML[:maxJobPostingChars]
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobExtractionPrompt, rawHTML))
	if err != nil {
		return "", fmt.Errorf("extract job details: %w", err)
	}
	return stripCodeFence(resp), nil
}

// stripCodeFence removes a ```json ... ``` wrapper around the answer.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
