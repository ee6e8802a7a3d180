package news

// Article is the stable internal shape for a single news item,
// regardless of what the upstream provider returns.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      string `json:"source"`
}

type Response struct {
	Count    int       `json:"count"`
	Articles []Article `json:"articles"`
}
