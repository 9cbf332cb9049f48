package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Paper is a research paper listing
type Paper struct {
	ID          FlexibleID `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Authors     []string   `json:"authors"`
	Conference  string     `json:"conference"`
	Category    string     `json:"category"`
	PublishedAt string     `json:"publishedAt"`
	Abstract    string     `json:"abstract"`
	Tags        []string   `json:"tags,omitempty"`
	Citations   int        `json:"citations,omitempty"`
	Views       int        `json:"views,omitempty"`
	PDFURL      string     `json:"pdfUrl,omitempty"`
	ArxivURL    string     `json:"arxivUrl,omitempty"`
	CodeURL     string     `json:"codeUrl,omitempty"`
	Trending    bool       `json:"trending"`
	HotScore    float64    `json:"hotScore,omitempty"`
}

// PaperList is the /papers envelope
type PaperList struct {
	Envelope
	Papers      []Paper `json:"papers" validate:"omitempty,dive"`
	Count       int     `json:"count"`
	LastUpdated string  `json:"lastUpdated"`
}

// PaperQuery narrows /papers server-side
type PaperQuery struct {
	Category   string
	Conference string
	Search     string
	Limit      int
}

// BlogArticle is an aggregated blog post
type BlogArticle struct {
	ID          FlexibleID `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Author      string     `json:"author"`
	Company     string     `json:"company"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	Category    string     `json:"category"`
	Topics      []string   `json:"topics,omitempty"`
	PublishedAt string     `json:"publishedAt"`
}

// BlogList is the /blogs envelope
type BlogList struct {
	Envelope
	Articles    []BlogArticle `json:"articles" validate:"omitempty,dive"`
	Count       int           `json:"count"`
	LastUpdated string        `json:"lastUpdated"`
}

// BlogQuery narrows /blogs server-side
type BlogQuery struct {
	Category string
	Search   string
	Limit    int
}

// NewsItem is an AI news feed entry
type NewsItem struct {
	ID          FlexibleID `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content,omitempty"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Category    string     `json:"category"`
	Platform    string     `json:"platform,omitempty"`
	PublishedAt string     `json:"publishedAt"`
}

// NewsList is the /ai-news envelope
type NewsList struct {
	Envelope
	News        []NewsItem `json:"news" validate:"omitempty,dive"`
	Count       int        `json:"count"`
	LastUpdated string     `json:"lastUpdated"`
}

// NewsQuery narrows /ai-news server-side
type NewsQuery struct {
	ExcludeSocial bool
	Platform      string
}

// RefreshResult is returned by the cache refresh endpoints
type RefreshResult struct {
	Envelope
}

// PaperAnalysis is the long-running AI interpretation of an arXiv paper
type PaperAnalysis struct {
	Envelope
	Data json.RawMessage `json:"data"`
}

// ListPapers returns research papers
func (c *Client) ListPapers(ctx context.Context, q PaperQuery) (*PaperList, error) {
	query := url.Values{}
	query.Set("category", q.Category)
	query.Set("conference", q.Conference)
	query.Set("search", q.Search)
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp PaperList
	if err := c.Get(ctx, withQuery("/papers", query), &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshPapers asks the backend to drop its paper cache
func (c *Client) RefreshPapers(ctx context.Context) error {
	return c.refresh(ctx, "/papers/refresh")
}

// ListBlogs returns aggregated blog articles
func (c *Client) ListBlogs(ctx context.Context, q BlogQuery) (*BlogList, error) {
	query := url.Values{}
	query.Set("category", q.Category)
	query.Set("search", q.Search)
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp BlogList
	if err := c.Get(ctx, withQuery("/blogs", query), &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshBlogs asks the backend to re-crawl blogs
func (c *Client) RefreshBlogs(ctx context.Context) error {
	return c.refresh(ctx, "/blogs/refresh")
}

// ListNews returns the AI news feed
func (c *Client) ListNews(ctx context.Context, q NewsQuery) (*NewsList, error) {
	query := url.Values{}
	if q.ExcludeSocial {
		query.Set("includeSocial", "false")
	}
	query.Set("platform", q.Platform)

	var resp NewsList
	if err := c.Get(ctx, withQuery("/ai-news", query), &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetNews returns a single news item
func (c *Client) GetNews(ctx context.Context, id string) (*NewsItem, error) {
	var resp struct {
		Envelope
		News *NewsItem `json:"news"`
	}
	if err := c.Get(ctx, fmt.Sprintf("/ai-news/%s", url.PathEscape(id)), &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.News == nil {
		return nil, &MalformedResponseError{Path: "/ai-news/" + id, Err: fmt.Errorf("missing news field")}
	}
	return resp.News, nil
}

// AnalyzeArxiv runs the deep analysis of an arXiv paper. This can take
// minutes; it relies on the client's long timeout.
func (c *Client) AnalyzeArxiv(ctx context.Context, arxivID, mode string) (*PaperAnalysis, error) {
	if mode == "" {
		mode = "summary"
	}

	body := map[string]string{"arxivId": arxivID, "mode": mode}

	var resp PaperAnalysis
	if err := c.Post(ctx, "/paper-analysis/from-arxiv", body, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) refresh(ctx context.Context, path string) error {
	var resp RefreshResult
	if err := c.Post(ctx, path, nil, &resp); err != nil {
		return err
	}
	return resp.Err()
}
