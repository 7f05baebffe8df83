package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/models"
)

// authorLookupCap bounds per-request author profile lookups; authors beyond
// the cap keep unknown age and get the conservative credibility default.
const authorLookupCap = 25

// RedditSource implements the Reddit API source
type RedditSource struct {
	clientID     string
	clientSecret string
	subreddits   []string
	client       *resty.Client
	accessToken  string
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

type redditAboutResponse struct {
	Data struct {
		Created      float64 `json:"created_utc"`
		LinkKarma    int     `json:"link_karma"`
		CommentKarma int     `json:"comment_karma"`
	} `json:"data"`
}

// NewRedditSource creates a new Reddit source
func NewRedditSource(clientID, clientSecret string, subreddits []string) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		subreddits:   subreddits,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return r.clientID != "" && r.clientSecret != ""
}

func (r *RedditSource) FetchPosts(ctx context.Context, symbol string, limit int) ([]models.Post, map[string]models.Author, error) {
	if !r.IsEnabled() {
		logrus.Debug("Reddit source disabled - missing credentials")
		return nil, nil, nil
	}

	if err := r.authenticate(ctx); err != nil {
		return nil, nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	var allPosts []models.Post
	// $SYM catches ticker-style mentions, the bare symbol catches the rest.
	queries := []string{"$" + symbol, symbol}

	for _, query := range queries {
		posts, err := r.search(ctx, query, symbol, limit)
		if err != nil {
			logrus.Errorf("Failed to search Reddit for %q: %v", query, err)
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	allPosts = dedupePosts(allPosts)
	if len(allPosts) > limit {
		allPosts = allPosts[:limit]
	}

	authors := r.lookupAuthors(ctx, allPosts)
	return allPosts, authors, nil
}

func (r *RedditSource) authenticate(ctx context.Context) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", "TruthFi/1.0").
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post("https://www.reddit.com/api/v1/access_token")

	if err != nil {
		return err
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return err
	}

	r.accessToken = authResp.AccessToken
	return nil
}

func (r *RedditSource) search(ctx context.Context, query, symbol string, limit int) ([]models.Post, error) {
	searchURL := fmt.Sprintf(
		"https://oauth.reddit.com/r/%s/search.json?q=%s&restrict_sr=1&sort=new&t=week&limit=%d",
		strings.Join(r.subreddits, "+"), url.QueryEscape(query), limit)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.accessToken).
		SetHeader("User-Agent", "TruthFi/1.0").
		Get(searchURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listing redditListing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, err
	}

	var posts []models.Post
	for _, child := range listing.Data.Children {
		post := child.Data

		content := strings.ToLower(post.Title + " " + post.Selftext)
		if !strings.Contains(content, strings.ToLower(symbol)) {
			continue
		}

		posts = append(posts, models.Post{
			ID:           fmt.Sprintf("reddit_%s", post.ID),
			Source:       "reddit",
			AuthorID:     post.Author,
			Title:        post.Title,
			Text:         post.Selftext,
			URL:          fmt.Sprintf("https://reddit.com%s", post.Permalink),
			CreatedAt:    time.Unix(int64(post.Created), 0).UTC(),
			Score:        post.Score,
			CommentCount: post.NumComments,
			TokenSymbol:  symbol,
		})
	}

	return posts, nil
}

// lookupAuthors resolves account age and karma for up to authorLookupCap
// distinct authors. Lookup failures leave the author with unknown age; the
// credibility scorer handles that conservatively.
func (r *RedditSource) lookupAuthors(ctx context.Context, posts []models.Post) map[string]models.Author {
	authors := make(map[string]models.Author)
	looked := 0

	for _, post := range posts {
		if _, seen := authors[post.AuthorID]; seen {
			continue
		}

		author := models.Author{
			AuthorID:       post.AuthorID,
			Source:         "reddit",
			AccountAgeDays: -1,
		}

		if looked < authorLookupCap && post.AuthorID != "" && post.AuthorID != "[deleted]" {
			if about, err := r.fetchAbout(ctx, post.AuthorID); err == nil {
				looked++
				created := time.Unix(int64(about.Data.Created), 0)
				author.AccountAgeDays = int(time.Since(created).Hours() / 24)
				karma := float64(about.Data.LinkKarma + about.Data.CommentKarma)
				author.Reputation = karma / (karma + 500)
				author.PostHistoryCount = about.Data.LinkKarma
			} else {
				logrus.Debugf("Reddit author lookup failed for %s: %v", post.AuthorID, err)
			}
		}

		authors[post.AuthorID] = author
	}

	return authors
}

func (r *RedditSource) fetchAbout(ctx context.Context, username string) (*redditAboutResponse, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.accessToken).
		SetHeader("User-Agent", "TruthFi/1.0").
		Get(fmt.Sprintf("https://oauth.reddit.com/user/%s/about.json", url.PathEscape(username)))

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var about redditAboutResponse
	if err := json.Unmarshal(resp.Body(), &about); err != nil {
		return nil, err
	}
	return &about, nil
}

// FetchRecent returns hot posts from the configured subreddits for trending
// aggregation.
func (r *RedditSource) FetchRecent(ctx context.Context, limit int) ([]models.Post, error) {
	if !r.IsEnabled() {
		return nil, nil
	}

	if err := r.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	hotURL := fmt.Sprintf("https://oauth.reddit.com/r/%s/hot.json?limit=%d",
		strings.Join(r.subreddits, "+"), limit)

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.accessToken).
		SetHeader("User-Agent", "TruthFi/1.0").
		Get(hotURL)

	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	var listing redditListing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, err
	}

	var posts []models.Post
	for _, child := range listing.Data.Children {
		post := child.Data
		posts = append(posts, models.Post{
			ID:           fmt.Sprintf("reddit_%s", post.ID),
			Source:       "reddit",
			AuthorID:     post.Author,
			Title:        post.Title,
			Text:         post.Selftext,
			URL:          fmt.Sprintf("https://reddit.com%s", post.Permalink),
			CreatedAt:    time.Unix(int64(post.Created), 0).UTC(),
			Score:        post.Score,
			CommentCount: post.NumComments,
		})
	}

	return posts, nil
}

func dedupePosts(posts []models.Post) []models.Post {
	seen := make(map[string]bool)
	var unique []models.Post

	for _, post := range posts {
		if !seen[post.ID] {
			seen[post.ID] = true
			unique = append(unique, post)
		}
	}

	return unique
}
