package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Клиент внешнего превью-сервиса: по URL проекта возвращает скриншот
// и метаданные страницы. Сервис медленный (рендерит страницу), поэтому
// таймаут явный, а отказ деградирует до «проект без картинки» —
// создание проекта из-за превью не падает.
type Client struct {
	log     *log.Logger
	http    *http.Client
	baseURL string
}

type Result struct {
	Image       []byte
	ImageMIME   string
	Title       string
	Description string
}

func New(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		log:     logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled — сервис сконфигурирован; без URL все вызовы — no-op.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// Fetch запрашивает превью. Любая ошибка возвращается вызывающему,
// который обязан её проглотить и продолжить без превью.
func (c *Client) Fetch(ctx context.Context, pageURL string) (Result, error) {
	if !c.Enabled() {
		return Result{}, fmt.Errorf("preview service not configured")
	}

	body, _ := json.Marshal(map[string]string{"url": pageURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", strings.NewReader(string(body)))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Printf("fetch %q failed after %s: %v", pageURL, time.Since(start), err)
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Printf("fetch %q: status %d", pageURL, resp.StatusCode)
		return Result{}, fmt.Errorf("preview service: status %d", resp.StatusCode)
	}

	var out struct {
		Image       []byte `json:"image"` // base64 в JSON
		ImageMIME   string `json:"image_mime"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return Result{}, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, fmt.Errorf("decode preview response: %w", err)
	}

	c.log.Printf("fetch %q ok in %s (%d bytes)", pageURL, time.Since(start), len(out.Image))
	return Result{
		Image:       out.Image,
		ImageMIME:   out.ImageMIME,
		Title:       out.Title,
		Description: out.Description,
	}, nil
}
