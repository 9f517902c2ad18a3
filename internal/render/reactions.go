package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/spiffcs/ghfeed/internal/model"
)

var reactionNames = map[model.ReactionKind]string{
	model.ReactionPlusOne:  "thumbs up",
	model.ReactionMinusOne: "thumbs down",
}

var reactionEmoji = map[model.ReactionKind]string{
	model.ReactionPlusOne:  "👍",
	model.ReactionMinusOne: "👎",
	model.ReactionLaugh:    "😄",
	model.ReactionHooray:   "🎉",
	model.ReactionConfused: "😕",
	model.ReactionHeart:    "❤️",
	model.ReactionRocket:   "🚀",
	model.ReactionEyes:     "👀",
}

type reactionBadge struct {
	Emoji string
	Count int
	Label string
}

// ReactionsBar renders one disabled badge per reaction kind with a
// positive count. It returns "" when no kind has one.
func (r *Renderer) ReactionsBar(rs *model.Reactions) template.HTML {
	var badges []reactionBadge
	for _, kind := range model.AllReactionKinds {
		n := rs.Count(kind)
		if n <= 0 {
			continue
		}
		name, ok := reactionNames[kind]
		if !ok {
			name = string(kind)
		}
		badges = append(badges, reactionBadge{
			Emoji: reactionEmoji[kind],
			Count: n,
			Label: fmt.Sprintf("%s: %d", name, n),
		})
	}
	if len(badges) == 0 {
		return ""
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "reactions", badges); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
