// Package catalog narrows lists already fetched from the backend. The
// server-side query parameters are coarse; these filters give the CLI the
// same search and facet behaviour the web pages offer.
package catalog

import (
	"slices"
	"strings"

	"github.com/ainewshub/newshub/internal/cli/client"
)

// All matches any value of a facet
const All = "all"

// PaperFilter selects papers. Empty fields and All match everything.
type PaperFilter struct {
	Search       string
	Category     string
	Conference   string
	TrendingOnly bool
}

// FilterPapers searches title and authors case-insensitively. Category is an
// exact match; conference is a case-insensitive substring.
func FilterPapers(papers []client.Paper, f PaperFilter) []client.Paper {
	return filter(papers, func(p client.Paper) bool {
		matchesSearch := f.Search == "" ||
			containsFold(p.Title, f.Search) ||
			slices.ContainsFunc(p.Authors, func(a string) bool { return containsFold(a, f.Search) })

		return matchesSearch &&
			(matchAll(f.Category) || p.Category == f.Category) &&
			(matchAll(f.Conference) || containsFold(p.Conference, f.Conference)) &&
			(!f.TrendingOnly || p.Trending)
	})
}

// CountTrending returns how many papers are flagged trending
func CountTrending(papers []client.Paper) int {
	n := 0
	for _, p := range papers {
		if p.Trending {
			n++
		}
	}
	return n
}

// BlogFilter selects blog articles. Empty fields and All match everything.
type BlogFilter struct {
	Search   string
	Category string
	Author   string
	Company  string
	Topic    string
}

// FilterBlogs searches title, author and summary; facets match exactly
func FilterBlogs(articles []client.BlogArticle, f BlogFilter) []client.BlogArticle {
	return filter(articles, func(a client.BlogArticle) bool {
		matchesSearch := f.Search == "" ||
			containsFold(a.Title, f.Search) ||
			containsFold(a.Author, f.Search) ||
			containsFold(a.Summary, f.Search)

		return matchesSearch &&
			(matchAll(f.Category) || a.Category == f.Category) &&
			(matchAll(f.Author) || a.Author == f.Author) &&
			(matchAll(f.Company) || a.Company == f.Company) &&
			(matchAll(f.Topic) || slices.Contains(a.Topics, f.Topic))
	})
}

// Facets lists the distinct values present in a set of articles
type Facets struct {
	Authors   []string `json:"authors" yaml:"authors"`
	Companies []string `json:"companies" yaml:"companies"`
	Topics    []string `json:"topics" yaml:"topics"`
}

// BlogFacets returns the sorted unique authors, companies and topics.
// Empty values are skipped.
func BlogFacets(articles []client.BlogArticle) Facets {
	var authors, companies, topics []string
	for _, a := range articles {
		authors = append(authors, a.Author)
		companies = append(companies, a.Company)
		topics = append(topics, a.Topics...)
	}

	return Facets{
		Authors:   uniqueSorted(authors),
		Companies: uniqueSorted(companies),
		Topics:    uniqueSorted(topics),
	}
}

// NewsFilter selects news items
type NewsFilter struct {
	Search   string
	Category string
}

// FilterNews searches title, summary and source; category matches exactly
func FilterNews(items []client.NewsItem, f NewsFilter) []client.NewsItem {
	return filter(items, func(n client.NewsItem) bool {
		matchesSearch := f.Search == "" ||
			containsFold(n.Title, f.Search) ||
			containsFold(n.Summary, f.Search) ||
			containsFold(n.Source, f.Search)

		return matchesSearch && (matchAll(f.Category) || n.Category == f.Category)
	})
}

// SearchQuestions keeps questions whose title or description contains term
func SearchQuestions(questions []client.Question, term string) []client.Question {
	if term == "" {
		return questions
	}
	return filter(questions, func(q client.Question) bool {
		return containsFold(q.Title, term) || containsFold(q.Description, term)
	})
}

// Page is a window over a list
type Page struct {
	Start, End int
	Current    int
	Pages      int
	Total      int
}

// Paginate returns the bounds of page (1-based) for total items. Out of
// range pages are clamped; perPage below one means everything on one page.
func Paginate(total, page, perPage int) Page {
	if total < 0 {
		total = 0
	}
	if perPage < 1 {
		perPage = max(total, 1)
	}

	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return Page{Start: start, End: end, Current: page, Pages: pages, Total: total}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func matchAll(facet string) bool {
	return facet == "" || facet == All
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func uniqueSorted(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
