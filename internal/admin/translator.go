package admin

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator resolves a message id into a label.
type Translator interface {
	Trans(id string) string
}

type identityTranslator struct{}

func (identityTranslator) Trans(id string) string { return id }

var supportedLocales = []language.Tag{language.English, language.French}

var messages = map[language.Tag]map[string]string{
	language.English: {
		"view_post":          "View Post",
		"link_view_comment":  "View Comments",
		"news.admin.post":    "Posts",
		"news.admin.comment": "Comments",
		"General":            "General",
		"Tags":               "Tags",
		"Options":            "Options",
	},
	language.French: {
		"view_post":          "Voir l'article",
		"link_view_comment":  "Voir les commentaires",
		"news.admin.post":    "Articles",
		"news.admin.comment": "Commentaires",
		"General":            "Général",
		"Tags":               "Mots-clés",
		"Options":            "Options",
	},
}

// CatalogTranslator translates admin labels from an x/text message catalog.
// Unknown ids translate to themselves.
type CatalogTranslator struct {
	printer *message.Printer
	tag     language.Tag
}

// NewTranslator picks the closest supported locale to locale, falling back
// to English.
func NewTranslator(locale string) *CatalogTranslator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for id, text := range msgs {
			// ids and labels carry no formatting verbs
			_ = b.SetString(tag, id, text)
		}
	}

	tag := language.English
	if wanted, err := language.Parse(locale); err == nil {
		_, idx, conf := language.NewMatcher(supportedLocales).Match(wanted)
		if conf != language.No {
			tag = supportedLocales[idx]
		}
	}
	return &CatalogTranslator{
		printer: message.NewPrinter(tag, message.Catalog(b)),
		tag:     tag,
	}
}

func (t *CatalogTranslator) Trans(id string) string {
	return t.printer.Sprintf(message.Key(id, id))
}

// Locale returns the locale the translator resolved to.
func (t *CatalogTranslator) Locale() string {
	return t.tag.String()
}
