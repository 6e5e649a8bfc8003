package domain

// RawTweet is a tweet as returned by the search API. Only the fields read by
// the normalizer are decoded; the snapshot file keeps the full payload.
type RawTweet struct {
	IDStr     string `json:"id_str"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`

	Entities Entities `json:"entities"`

	// ExtendedTweet is only present for tweets longer than the default
	// text length. It carries the untruncated text and its entities.
	ExtendedTweet *ExtendedTweet `json:"extended_tweet,omitempty"`

	User RawUser `json:"user"`
}

// ExtendedTweet is the untruncated representation of a long tweet.
type ExtendedTweet struct {
	FullText string   `json:"full_text"`
	Entities Entities `json:"entities"`
}

// Entities annotate literal substrings of a tweet's text.
type Entities struct {
	Media    []MediaEntity   `json:"media,omitempty"`
	URLs     []URLEntity     `json:"urls,omitempty"`
	Hashtags []HashtagEntity `json:"hashtags,omitempty"`
}

// MediaEntity references an attached photo, video or gif.
type MediaEntity struct {
	URL           string `json:"url"`
	MediaURLHTTPS string `json:"media_url_https"`
	Type          string `json:"type"`
}

// URLEntity maps a shortened link in the text to its target.
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
}

// HashtagEntity is a hashtag without its leading '#'.
type HashtagEntity struct {
	Text string `json:"text"`
}

// RawUser is the author block embedded in every tweet.
type RawUser struct {
	Name                 string `json:"name"`
	ScreenName           string `json:"screen_name"`
	ProfileImageURLHTTPS string `json:"profile_image_url_https"`
}

// Tweet is the normalized record registered with the site's data layer.
type Tweet struct {
	// ID is the tweet's canonical string identifier.
	ID string `json:"id"`

	// CreatedAt is the creation time in epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// Text has media URLs removed and links/hashtags rewritten as anchors.
	Text string `json:"text"`

	User User `json:"user"`

	PhotoURLs []string `json:"photoUrls"`
	Hashtags  []string `json:"hashtags"`
}

// User is the normalized author of a tweet.
type User struct {
	Name         string `json:"name"`
	ScreenName   string `json:"screenName"`
	ProfileImage string `json:"profileImage"`
}
