package locator

import (
	"strings"

	"github.com/vneseyoungster/linkedin-automatic-comment/internal/session"
)

// chains holds the ordered tactic tables per role. Order matters: earlier
// entries are more specific to the current markup, later ones are broader
// fallbacks that survive class-name churn.
var chains = map[Role][]Tactic{
	RolePostContainer: {
		{
			Name:  "ember-id-with-actor",
			Query: `div[id^='ember']`,
			Accept: func(el session.Element) bool {
				return el.Height > 100
			},
		},
	},

	RoleCommentButton: {
		{
			Name:  "social-action-bar-id",
			Query: `button[id^='feed-shared-social-action-bar-comment-']`,
		},
		{
			Name:  "aria-label-comment",
			Query: `button[aria-label*='comment' i]`,
		},
		{
			Name:  "id-contains-comment",
			Query: `button[id*='comment']`,
		},
		{
			Name:  "action-bar-scan",
			Query: `.feed-shared-social-action-bar button`,
			Accept: func(el session.Element) bool {
				return containsFold(el.Text, "comment") ||
					containsFold(el.AriaLabel, "comment")
			},
		},
	},

	RoleTextEditor: {
		{
			Name:  "comment-box-editor",
			Query: `.comments-comment-box-comment__text-editor .ql-editor`,
		},
		{
			Name:  "quill-editor",
			Query: `.ql-editor`,
		},
		{
			Name:  "contenteditable-textbox",
			Query: `[contenteditable='true'][role='textbox']`,
		},
		{
			Name:  "generic-contenteditable",
			Query: `[contenteditable='true']`,
			Accept: func(el session.Element) bool {
				return el.Height > 20
			},
		},
	},

	RoleSubmitButton: {
		{
			Name:  "ember-button-labelled",
			Query: `button[id^='ember']`,
			Accept: func(el session.Element) bool {
				switch strings.TrimSpace(el.Text) {
				case "Comment", "Post", "Post comment":
					return true
				}
				return false
			},
		},
		{
			Name:  "comment-box-submit",
			Query: `button.comments-comment-box__submit-button--cr`,
		},
		{
			Name:  "comment-box-submit-partial",
			Query: `button[class*='comments-comment-box__submit-button']`,
		},
		{
			Name:  "primary-button-labelled",
			Query: `button.artdeco-button--primary`,
			Accept: func(el session.Element) bool {
				return containsFold(el.Text, "comment") ||
					containsFold(el.Text, "post") ||
					containsFold(el.AriaLabel, "comment") ||
					containsFold(el.AriaLabel, "post")
			},
		},
		{
			Name:  "any-button-labelled",
			Query: `button`,
			Accept: func(el session.Element) bool {
				text := strings.TrimSpace(el.Text)
				return text == "Comment" || text == "Post" || text == "Post comment"
			},
		},
	},

	RoleExpandButton: {
		{
			Name:  "impression-container-button",
			Query: `div.fie-impression-container div[class*='biSBAHR'] > div > button`,
		},
		{
			Name:  "aria-label-more",
			Query: `button[aria-label*='more' i]`,
		},
		{
			Name:  "see-more-span",
			Query: `button span[class*='see-more']`,
		},
		{
			Name:  "description-button",
			Query: `.feed-shared-update-v2__description button`,
		},
		{
			Name:  "control-name-see-more",
			Query: `button[data-control-name*='see_more']`,
		},
		{
			Name:  "generic-more-text",
			Query: `button`,
			Accept: func(el session.Element) bool {
				text := el.Text
				if len(text) >= 30 {
					return false
				}
				if !containsFold(text, "more") {
					return false
				}
				// "Show more comments" and "Load more replies" expand the
				// thread, not the post body.
				return !containsFold(text, "show") && !containsFold(text, "repl")
			},
		},
	},

	RoleAuthorName: {
		{
			Name:   "actor-title-nested",
			Query:  `.update-components-actor__title span.hoverable-link-text span span:first-child`,
			Accept: plausibleName,
		},
		{
			Name:   "actor-title-hoverable",
			Query:  `.update-components-actor__title .hoverable-link-text`,
			Accept: plausibleName,
		},
		{
			Name:   "actor-title-visible",
			Query:  `.update-components-actor__title span[aria-hidden='true']`,
			Accept: plausibleName,
		},
		{
			Name:   "actor-name",
			Query:  `.update-components-actor__name span`,
			Accept: plausibleName,
		},
		{
			Name:   "legacy-actor-name",
			Query:  `.feed-shared-actor__name span`,
			Accept: plausibleName,
		},
	},
}

// plausibleName rejects empty or near-empty author spans.
func plausibleName(el session.Element) bool {
	return len(strings.TrimSpace(el.Text)) > 2
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
