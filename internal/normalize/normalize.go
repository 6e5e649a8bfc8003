// Package normalize turns raw search API tweets into the compact records the
// site renders.
package normalize

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
	"unicode"

	"tweetfeed/internal/domain"
)

// HashtagBaseURL is the search page a rewritten hashtag links to.
const HashtagBaseURL = "https://twitter.com/hashtag/"

// ErrMalformedTweet is returned for tweets missing a required field.
var ErrMalformedTweet = errors.New("malformed tweet")

// createdAtLayouts are tried in order. The API uses the Ruby date layout.
var createdAtLayouts = []string{
	time.RubyDate,
	time.RFC3339,
}

// Normalize converts a single raw tweet. Missing entity categories are
// treated as empty; a missing id or unparseable creation date is an error.
func Normalize(raw domain.RawTweet) (domain.Tweet, error) {
	if raw.IDStr == "" {
		return domain.Tweet{}, fmt.Errorf("%w: missing id_str", ErrMalformedTweet)
	}
	createdAt, err := parseCreatedAt(raw.CreatedAt)
	if err != nil {
		return domain.Tweet{}, fmt.Errorf("%w: tweet %s: %v", ErrMalformedTweet, raw.IDStr, err)
	}

	text, entities := source(raw)
	text = strings.TrimSpace(text)

	for _, u := range distinct(entities.Media, func(m domain.MediaEntity) string { return m.URL }) {
		text = strings.TrimSpace(strings.ReplaceAll(text, u, ""))
	}

	segs := []segment{{text: text}}

	urls := make(map[string]string, len(entities.URLs))
	for _, u := range entities.URLs {
		if _, ok := urls[u.URL]; !ok && u.URL != "" {
			urls[u.URL] = anchor(u.ExpandedURL, u.DisplayURL)
		}
	}
	for _, u := range longestFirst(keys(urls)) {
		segs = trimSegments(rewrite(segs, u, urls[u]))
	}

	tags := distinct(entities.Hashtags, func(h domain.HashtagEntity) string { return h.Text })
	for _, tag := range longestFirst(tags) {
		literal := "#" + tag
		segs = trimSegments(rewrite(segs, literal, anchor(HashtagBaseURL+tag, literal)))
	}
	text = join(segs)

	return domain.Tweet{
		ID:        raw.IDStr,
		CreatedAt: createdAt.UnixMilli(),
		Text:      text,
		User: domain.User{
			Name:         raw.User.Name,
			ScreenName:   raw.User.ScreenName,
			ProfileImage: BiggerProfileImage(raw.User.ProfileImageURLHTTPS),
		},
		PhotoURLs: photoURLs(entities.Media),
		Hashtags:  hashtags(entities.Hashtags),
	}, nil
}

// NormalizeAll normalizes tweets in order, stopping at the first malformed one.
func NormalizeAll(raws []domain.RawTweet) ([]domain.Tweet, error) {
	tweets := make([]domain.Tweet, 0, len(raws))
	for i, raw := range raws {
		t, err := Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		tweets = append(tweets, t)
	}
	return tweets, nil
}

// BiggerProfileImage swaps the "_normal" size suffix of a profile image URL
// for "_bigger". URLs without the suffix are returned unchanged.
func BiggerProfileImage(u string) string {
	ext := path.Ext(u)
	stem := strings.TrimSuffix(u, ext)
	if !strings.HasSuffix(stem, "_normal") {
		return u
	}
	return strings.TrimSuffix(stem, "_normal") + "_bigger" + ext
}

// source picks the text and entities to work from. The extended payload wins
// as a whole; fields are never mixed between the two.
func source(raw domain.RawTweet) (string, domain.Entities) {
	if raw.ExtendedTweet != nil {
		return raw.ExtendedTweet.FullText, raw.ExtendedTweet.Entities
	}
	return raw.Text, raw.Entities
}

func anchor(href, label string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">%s</a>`, href, label)
}

// segment is a run of tweet text. Markup segments hold anchors emitted by an
// earlier rewrite and are never rewritten again.
type segment struct {
	text   string
	markup bool
}

// rewrite replaces every occurrence of literal in the plain segments with a
// markup segment.
func rewrite(segs []segment, literal, markup string) []segment {
	out := make([]segment, 0, len(segs))
	for _, sg := range segs {
		if sg.markup || !strings.Contains(sg.text, literal) {
			out = append(out, sg)
			continue
		}
		parts := strings.Split(sg.text, literal)
		for i, p := range parts {
			if i > 0 {
				out = append(out, segment{text: markup, markup: true})
			}
			if p != "" {
				out = append(out, segment{text: p})
			}
		}
	}
	return out
}

// trimSegments trims whitespace around the whole text.
func trimSegments(segs []segment) []segment {
	if len(segs) > 0 && !segs[0].markup {
		segs[0].text = strings.TrimLeftFunc(segs[0].text, unicode.IsSpace)
	}
	if last := len(segs) - 1; last >= 0 && !segs[last].markup {
		segs[last].text = strings.TrimRightFunc(segs[last].text, unicode.IsSpace)
	}
	out := segs[:0]
	for _, sg := range segs {
		if sg.markup || sg.text != "" {
			out = append(out, sg)
		}
	}
	return out
}

func join(segs []segment) string {
	var b strings.Builder
	for _, sg := range segs {
		b.WriteString(sg.text)
	}
	return b.String()
}

// longestFirst orders literals so a literal is rewritten before any of its
// prefixes ("#golang" before "#go").
func longestFirst(literals []string) []string {
	sort.SliceStable(literals, func(i, j int) bool {
		return len(literals[i]) > len(literals[j])
	})
	return literals
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func parseCreatedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing created_at")
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable created_at %q", s)
}

// distinct returns the non-empty keys of items in first-seen order.
func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func photoURLs(media []domain.MediaEntity) []string {
	out := []string{}
	for _, m := range media {
		if m.Type == "photo" {
			out = append(out, m.MediaURLHTTPS)
		}
	}
	return out
}

func hashtags(tags []domain.HashtagEntity) []string {
	out := make([]string, 0, len(tags))
	for _, h := range tags {
		out = append(out, h.Text)
	}
	return out
}
