package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/truthfi/truthfi/internal/models"
)

func TestSourcesDisabledWithoutCredentials(t *testing.T) {
	assert.False(t, NewRedditSource("", "", []string{"CryptoCurrency"}).IsEnabled())
	assert.False(t, NewRedditSource("id", "", []string{"CryptoCurrency"}).IsEnabled())
	assert.False(t, NewTwitterSource("").IsEnabled())
	assert.False(t, NewTelegramSource("").IsEnabled())

	assert.True(t, NewRedditSource("id", "secret", []string{"CryptoCurrency"}).IsEnabled())
	assert.True(t, NewTwitterSource("token").IsEnabled())
	assert.True(t, NewTelegramSource("token").IsEnabled())
}

func TestDisabledSourceFetchesNothing(t *testing.T) {
	src := NewRedditSource("", "", []string{"CryptoCurrency"})

	posts, authors, err := src.FetchPosts(context.Background(), "BTC", 10)
	assert.NoError(t, err)
	assert.Nil(t, posts)
	assert.Nil(t, authors)

	recent, err := src.FetchRecent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Nil(t, recent)
}

func TestSourceNames(t *testing.T) {
	assert.Equal(t, "reddit", NewRedditSource("", "", nil).GetName())
	assert.Equal(t, "twitter", NewTwitterSource("").GetName())
	assert.Equal(t, "telegram", NewTelegramSource("").GetName())
}

func TestDedupePosts(t *testing.T) {
	posts := []models.Post{
		{ID: "reddit_1", Title: "first"},
		{ID: "reddit_2", Title: "second"},
		{ID: "reddit_1", Title: "first again"},
	}

	unique := dedupePosts(posts)

	assert.Len(t, unique, 2)
	assert.Equal(t, "first", unique[0].Title)
	assert.Equal(t, "second", unique[1].Title)
}
