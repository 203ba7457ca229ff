// Package messages holds the bilingual user-facing strings. Every notification
// in the system shows the Marathi text followed by the English text.
package messages

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Separator joins the two halves of a bilingual message.
const Separator = " / "

// Message is a bilingual string.
type Message struct {
	Local   string `json:"local" yaml:"local" toml:"local"`
	English string `json:"english" yaml:"english" toml:"english"`
}

// Bilingual builds a Message from its two halves.
func Bilingual(local, english string) Message {
	return Message{Local: strings.TrimSpace(local), English: strings.TrimSpace(english)}
}

// String renders "local / english", dropping a missing half.
func (m Message) String() string {
	switch {
	case m.Local == "":
		return m.English
	case m.English == "":
		return m.Local
	default:
		return m.Local + Separator + m.English
	}
}

// IsZero reports whether both halves are empty.
func (m Message) IsZero() bool {
	return m.Local == "" && m.English == ""
}

// Key identifies a catalog entry.
type Key string

const (
	RequiredFields     Key = "validation.required_fields"
	FileTooLarge       Key = "upload.too_large"
	FileUnsupported    Key = "upload.unsupported_type"
	FormNotFound       Key = "export.form_not_found"
	Yes                Key = "common.yes"
	No                 Key = "common.no"
	ConnectionRestored Key = "network.online"
	ConnectionLost     Key = "network.offline"
	ExportHeader       Key = "export.header"
	ExportTitle        Key = "export.title"
	PrintAction        Key = "export.print"
	CloseAction        Key = "export.close"
	PreviewRemove      Key = "upload.preview_remove"
)

var defaults = map[Key]Message{
	RequiredFields:     Bilingual("कृपया सर्व आवश्यक फील्ड भरा", "Please fill all required fields"),
	FileTooLarge:       Bilingual("फाइल साइज 16MB पेक्षा कमी असावा", "File size should be less than 16MB"),
	FileUnsupported:    Bilingual("केवळ PNG, JPG, JPEG, GIF, PDF फाइल्स स्वीकारल्या जातात", "Only PNG, JPG, JPEG, GIF, PDF files are accepted"),
	FormNotFound:       Bilingual("फॉर्म सापडला नाही", "Form not found"),
	Yes:                Bilingual("होय", "Yes"),
	No:                 Bilingual("नाही", "No"),
	ConnectionRestored: Bilingual("इंटरनेट कनेक्शन पुनर्स्थापित झाले", "Internet connection restored"),
	ConnectionLost:     Bilingual("इंटरनेट कनेक्शन नाही", "No internet connection"),
	ExportHeader:       Bilingual("हार्मनी हँड्स विद्यार्थी ERP", "Harmony Hands Student ERP"),
	ExportTitle:        Bilingual("प्रिंट", "Print"),
	PrintAction:        Bilingual("प्रिंट करा", "Print"),
	CloseAction:        Bilingual("बंद करा", "Close"),
	PreviewRemove:      Bilingual("काढा", "Remove"),
}

// ErrMissingMessage is returned by Translate for unknown keys.
var ErrMissingMessage = errors.New("messages: missing message")

// Translator mirrors the render-layer translator contract so the catalog can
// feed template helpers.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Catalog resolves keys to bilingual messages. The zero value is not usable;
// construct with NewCatalog.
type Catalog struct {
	mu      sync.RWMutex
	entries map[Key]Message
	matcher language.Matcher
}

var _ Translator = (*Catalog)(nil)

// supported lists the two catalog languages; index 0 is the local language.
var supported = []language.Tag{language.Marathi, language.English}

// NewCatalog returns a catalog seeded with the default messages; overrides
// replace individual entries.
func NewCatalog(overrides map[Key]Message) *Catalog {
	entries := make(map[Key]Message, len(defaults)+len(overrides))
	for key, msg := range defaults {
		entries[key] = msg
	}
	for key, msg := range overrides {
		if msg.IsZero() {
			continue
		}
		entries[key] = msg
	}
	return &Catalog{
		entries: entries,
		matcher: language.NewMatcher(supported),
	}
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the shared catalog with the built-in messages.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = NewCatalog(nil)
	})
	return defaultCatalog
}

// Get returns the message for key; unknown keys fall back to the key itself.
func (c *Catalog) Get(key Key) Message {
	if c == nil {
		c = Default()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if msg, ok := c.entries[key]; ok {
		return msg
	}
	return Message{English: string(key)}
}

// Set replaces a single entry.
func (c *Catalog) Set(key Key, msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = msg
}

// Translate returns one half of the message for key, chosen by matching
// locale against Marathi and English. An empty or unparsable locale yields
// the full bilingual string. Args are applied with fmt.Sprintf.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		c = Default()
	}
	c.mu.RLock()
	msg, ok := c.entries[Key(strings.TrimSpace(key))]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingMessage, key)
	}

	text := msg.String()
	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil {
		_, idx, conf := c.matcher.Match(tag)
		if conf != language.No {
			if idx == 0 && msg.Local != "" {
				text = msg.Local
			} else if idx == 1 && msg.English != "" {
				text = msg.English
			}
		}
	}
	if len(args) > 0 {
		text = fmt.Sprintf(text, args...)
	}
	return text, nil
}

// Get resolves key from the default catalog.
func Get(key Key) Message {
	return Default().Get(key)
}
