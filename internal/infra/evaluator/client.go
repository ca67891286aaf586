package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

// Клиент внешнего AI-сервиса оценки проектов. Генерация — дело самого
// сервиса; здесь только запрос с таймаутом и разбор структурированного
// ответа. Отказ отдаётся вызывающему эндпоинту оценки — остальных
// операций он не касается.
type Client struct {
	log     *log.Logger
	http    *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		log:     logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool { return c.baseURL != "" }

func (c *Client) Evaluate(ctx context.Context, p domain.Project) (domain.Evaluation, error) {
	if !c.Enabled() {
		return domain.Evaluation{}, fmt.Errorf("evaluation service not configured")
	}

	body, _ := json.Marshal(map[string]string{
		"title":       p.Title,
		"description": p.Description,
		"repo_url":    p.RepoURL,
		"site_url":    p.SiteURL,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/evaluate", strings.NewReader(string(body)))
	if err != nil {
		return domain.Evaluation{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Printf("evaluate project=%d failed after %s: %v", p.ID, time.Since(start), err)
		return domain.Evaluation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Printf("evaluate project=%d: status %d", p.ID, resp.StatusCode)
		return domain.Evaluation{}, fmt.Errorf("evaluation service: status %d", resp.StatusCode)
	}

	var out struct {
		Summary    string   `json:"summary"`
		Score      int      `json:"score"`
		Strengths  []string `json:"strengths"`
		Weaknesses []string `json:"weaknesses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Evaluation{}, fmt.Errorf("decode evaluation response: %w", err)
	}

	c.log.Printf("evaluate project=%d ok in %s score=%d", p.ID, time.Since(start), out.Score)
	return domain.Evaluation{
		ProjectID:   p.ID,
		Summary:     out.Summary,
		Score:       out.Score,
		Strengths:   out.Strengths,
		Weaknesses:  out.Weaknesses,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
