package content

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	id, title, body, cat string
}

func (d doc) SearchText() []string { return []string{d.title, d.body} }
func (d doc) CategoryRef() string  { return d.cat }

func docs(n int) []doc {
	out := make([]doc, n)
	for i := range out {
		cat := "tips"
		if i%2 == 1 {
			cat = "news"
		}
		out[i] = doc{id: fmt.Sprint(i), title: fmt.Sprintf("Post %d", i), body: "body", cat: cat}
	}
	return out
}

func TestFilter(t *testing.T) {
	items := []doc{
		{id: "1", title: "Netflix en TV", body: "pasos", cat: "tv"},
		{id: "2", title: "Disney", body: "Código de NETFLIX", cat: "codes"},
		{id: "3", title: "Max", body: "nada", cat: "tv"},
		{id: "4", title: "Prime", body: "netflix", cat: ""},
	}

	got := Filter(items, "netflix", "")
	assert.Len(t, got, 3)

	got = Filter(items, "NetFlix", "tv")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].id)

	got = Filter(items, "", "tv")
	assert.Len(t, got, 2)

	assert.Len(t, Filter(items, "  ", ""), 4)
	assert.Empty(t, Filter(items, "hbo", ""))
}

func TestFilterSubsetProperty(t *testing.T) {
	items := docs(23)
	for _, term := range []string{"", "post 1", "body", "zzz"} {
		for _, cat := range []string{"", "tips", "news", "missing"} {
			for _, it := range Filter(items, term, cat) {
				if cat != "" {
					assert.Equal(t, cat, it.cat)
				}
				assert.True(t, strings.Contains(strings.ToLower(it.title+" "+it.body), strings.ToLower(term)))
			}
		}
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, []int{1, 2, 3}, Paginate(items, 1, 3))
	assert.Equal(t, []int{7}, Paginate(items, 3, 3))
	assert.Empty(t, Paginate(items, 4, 3))
	assert.Empty(t, Paginate(items, 0, 3))
	assert.Empty(t, Paginate([]int{}, 1, 3))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 6))
	assert.Equal(t, 1, TotalPages(6, 6))
	assert.Equal(t, 2, TotalPages(7, 6))
	assert.Equal(t, 4, TotalPages(23, 6))
}

func TestBrowserResetsPage(t *testing.T) {
	b := NewBrowser(docs(20), 6)
	assert.Equal(t, PageInfo{CurrentPage: 1, TotalPages: 4, TotalItems: 20, PageSize: 6}, b.Info())

	b.SetPage(3)
	assert.Equal(t, 3, b.Info().CurrentPage)
	assert.Len(t, b.Page(), 6)

	b.SetSearch("post 1")
	assert.Equal(t, 1, b.Info().CurrentPage)
	// Post 1, Post 10..19
	assert.Equal(t, 11, b.Info().TotalItems)

	b.SetPage(2)
	b.SetCategory("news")
	assert.Equal(t, 1, b.Info().CurrentPage)
	for _, d := range b.Page() {
		assert.Equal(t, "news", d.cat)
	}

	b.SetPage(2)
	b.SetItems(docs(3))
	assert.Equal(t, 1, b.Info().CurrentPage)
}

func TestBrowserPageBeyondRange(t *testing.T) {
	b := NewBrowser(docs(5), 6)
	b.SetPage(9)
	assert.Empty(t, b.Page())
	assert.Equal(t, 1, b.Info().TotalPages)
}
