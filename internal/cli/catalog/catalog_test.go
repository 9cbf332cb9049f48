package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ainewshub/newshub/internal/cli/client"
)

func paperTitles(papers []client.Paper) []string {
	titles := make([]string, len(papers))
	for i, p := range papers {
		titles[i] = p.Title
	}
	return titles
}

func TestFilterPapers(t *testing.T) {
	papers := []client.Paper{
		{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, Category: "nlp", Conference: "NeurIPS 2017", Trending: true},
		{Title: "Deep Residual Learning", Authors: []string{"Kaiming He"}, Category: "cv", Conference: "CVPR 2016"},
		{Title: "Scaling Laws", Authors: []string{"Jared Kaplan"}, Category: "nlp", Conference: "arXiv", Trending: true},
	}

	tests := []struct {
		name   string
		filter PaperFilter
		want   []string
	}{
		{"no filter", PaperFilter{}, []string{"Attention Is All You Need", "Deep Residual Learning", "Scaling Laws"}},
		{"search title case-insensitive", PaperFilter{Search: "RESIDUAL"}, []string{"Deep Residual Learning"}},
		{"search author", PaperFilter{Search: "kaplan"}, []string{"Scaling Laws"}},
		{"category exact", PaperFilter{Category: "nlp"}, []string{"Attention Is All You Need", "Scaling Laws"}},
		{"category all", PaperFilter{Category: All}, []string{"Attention Is All You Need", "Deep Residual Learning", "Scaling Laws"}},
		{"conference substring", PaperFilter{Conference: "neurips"}, []string{"Attention Is All You Need"}},
		{"trending only", PaperFilter{TrendingOnly: true, Category: "nlp", Search: "scaling"}, []string{"Scaling Laws"}},
		{"nothing matches", PaperFilter{Category: "robotics"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, paperTitles(FilterPapers(papers, tt.filter)))
		})
	}

	require.Equal(t, 2, CountTrending(papers))
}

func TestFilterBlogsAndFacets(t *testing.T) {
	articles := []client.BlogArticle{
		{Title: "Inside GPT", Author: "Sam", Company: "OpenAI", Summary: "transformers at scale", Category: "research", Topics: []string{"llm", "scaling"}},
		{Title: "Gemini notes", Author: "Demis", Company: "Google", Summary: "multimodal", Category: "product", Topics: []string{"llm", "vision"}},
		{Title: "Untitled", Author: "", Company: "", Category: "research"},
	}

	got := FilterBlogs(articles, BlogFilter{Search: "MULTIMODAL"})
	require.Len(t, got, 1)
	require.Equal(t, "Gemini notes", got[0].Title)

	got = FilterBlogs(articles, BlogFilter{Topic: "llm", Company: "OpenAI"})
	require.Len(t, got, 1)
	require.Equal(t, "Inside GPT", got[0].Title)

	got = FilterBlogs(articles, BlogFilter{Category: "research", Author: All})
	require.Len(t, got, 2)

	facets := BlogFacets(articles)
	require.Equal(t, []string{"Demis", "Sam"}, facets.Authors)
	require.Equal(t, []string{"Google", "OpenAI"}, facets.Companies)
	require.Equal(t, []string{"llm", "scaling", "vision"}, facets.Topics)

	require.Empty(t, BlogFacets(nil).Authors)
}

func TestFilterNews(t *testing.T) {
	items := []client.NewsItem{
		{Title: "New model released", Source: "TechCrunch", Category: "AI"},
		{Title: "Framework update", Summary: "faster builds", Source: "GitHub", Category: "tools"},
	}

	require.Len(t, FilterNews(items, NewsFilter{}), 2)
	require.Len(t, FilterNews(items, NewsFilter{Search: "github"}), 1)
	require.Len(t, FilterNews(items, NewsFilter{Category: "AI", Search: "faster"}), 0)
}

func TestSearchQuestions(t *testing.T) {
	questions := []client.Question{
		{Title: "Two Sum", Description: "find indices"},
		{Title: "Reverse List", Description: "linked list reversal"},
	}

	require.Len(t, SearchQuestions(questions, ""), 2)
	require.Len(t, SearchQuestions(questions, "LIST"), 1)
	require.Len(t, SearchQuestions(questions, "indices"), 1)
	require.Empty(t, SearchQuestions(questions, "graph"))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                         string
		total, page, perPage         int
		wantStart, wantEnd, wantPage int
		wantPages                    int
	}{
		{"first page", 25, 1, 10, 0, 10, 1, 3},
		{"last partial page", 25, 3, 10, 20, 25, 3, 3},
		{"page past end clamps", 25, 9, 10, 20, 25, 3, 3},
		{"page zero clamps", 25, 0, 10, 0, 10, 1, 3},
		{"empty list", 0, 1, 10, 0, 0, 1, 1},
		{"no page size", 7, 2, 0, 0, 7, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.total, tt.page, tt.perPage)
			require.Equal(t, tt.wantStart, p.Start)
			require.Equal(t, tt.wantEnd, p.End)
			require.Equal(t, tt.wantPage, p.Current)
			require.Equal(t, tt.wantPages, p.Pages)
		})
	}
}
