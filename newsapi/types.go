package newsapi

import "time"

// Article is a news article as served by the backend.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Source      string    `json:"source,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ListParams filters the article feed. Zero fields are not sent.
type ListParams struct {
	Category string
	Query    string
	Page     int `validate:"gte=0"`
	Limit    int `validate:"gte=0,lte=100"`
}

// Feed is the result of Articles.List.
//
// When the backend is unreachable Offline is set and Articles holds the
// last list fetched for the same params, if one is still cached. Stale
// reports that the articles came from the cache.
type Feed struct {
	Articles  []Article
	FetchedAt time.Time
	Offline   bool
	Stale     bool
	Message   string
}

// ExplainRequest asks for a plain-language explanation of an article.
type ExplainRequest struct {
	ArticleID string `json:"articleId" validate:"required"`
	Question  string `json:"question,omitempty"`
}

// Explanation is the reply to ExplainRequest.
type Explanation struct {
	Explanation string `json:"explanation"`
}

// ChatMessage is one turn of an article chat.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest continues a conversation about an article.
type ChatRequest struct {
	ArticleID string        `json:"articleId" validate:"required"`
	Messages  []ChatMessage `json:"messages" validate:"required,min=1,dive"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Reply string `json:"reply"`
}

// QuizRequest asks for a comprehension quiz on an article.
type QuizRequest struct {
	ArticleID string `json:"articleId" validate:"required"`
	Questions int    `json:"questions,omitempty" validate:"gte=0,lte=20"`
}

// QuizQuestion is a multiple-choice question. Answer indexes Options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// Quiz is the reply to QuizRequest.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

// CoverageRequest asks how different outlets cover a topic or article.
type CoverageRequest struct {
	Topic     string `json:"topic,omitempty" validate:"required_without=ArticleID"`
	ArticleID string `json:"articleId,omitempty"`
}

// CoverageSource is one outlet's take.
type CoverageSource struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
	Stance string `json:"stance,omitempty"`
}

// Coverage is the reply to CoverageRequest.
type Coverage struct {
	Summary string           `json:"summary"`
	Sources []CoverageSource `json:"sources"`
}

// Profile is the signed-in user.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Interests []string  `json:"interests,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileUpdate changes the signed-in user. Nil fields are left as is.
type ProfileUpdate struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Interests []string `json:"interests,omitempty" validate:"omitempty,max=20,dive,required"`
}
