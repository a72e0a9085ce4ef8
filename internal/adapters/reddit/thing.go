package reddit

import (
	"encoding/json"
	"strings"
)

const (
	kindComment = "t1"
	kindMore    = "more"
)

// Comment is one collected comment.
type Comment struct {
	ID         string   `json:"-"`
	Body       string   `json:"body_html"`
	CreatedUTC *float64 `json:"created_utc"`
}

// Thing is the envelope every listing entry comes in.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Data struct {
		Children []Thing `json:"children"`
	} `json:"data"`
}

type commentData struct {
	ID         string          `json:"id"`
	BodyHTML   string          `json:"body_html"`
	CreatedUTC *float64        `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

type moreData struct {
	Children []string `json:"children"`
}

var htmlReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&#39;", "'",
	"&quot;", `"`,
)

var tagReplacer = strings.NewReplacer(
	"<bold>", "**",
	"</bold>", "**",
	`<div class="md">`, "",
	"</div>", "",
	"<p>", "",
	"</p>", "",
	"\n", " ",
)

// CleanHTML unescapes the entities in a comment's body_html, turns bold
// tags into markdown, drops the wrapper div and paragraph tags, and folds
// newlines into spaces.
func CleanHTML(s string) string {
	return strings.TrimSpace(tagReplacer.Replace(htmlReplacer.Replace(s)))
}

// Walk flattens a list of things. Comments come back in depth-first order
// with their replies; each "more" entry contributes its child IDs as one
// group.
func Walk(things []Thing) (comments []Comment, more [][]string) {
	stack := make([]Thing, 0, len(things))
	for i := len(things) - 1; i >= 0; i-- {
		stack = append(stack, things[i])
	}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch t.Kind {
		case kindComment:
			var d commentData
			if json.Unmarshal(t.Data, &d) != nil {
				continue
			}
			comments = append(comments, Comment{ID: d.ID, Body: CleanHTML(d.BodyHTML), CreatedUTC: d.CreatedUTC})
			var replies listing
			if len(d.Replies) > 0 && json.Unmarshal(d.Replies, &replies) == nil {
				kids := replies.Data.Children
				for i := len(kids) - 1; i >= 0; i-- {
					stack = append(stack, kids[i])
				}
			}
		case kindMore:
			var d moreData
			if json.Unmarshal(t.Data, &d) != nil || len(d.Children) == 0 {
				continue
			}
			more = append(more, d.Children)
		}
	}
	return comments, more
}

// Batches caps ids at limit and splits the rest into groups of at most
// size.
func Batches(ids []string, limit, size int) [][]string {
	if limit >= 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	if size <= 0 {
		size = len(ids)
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}
