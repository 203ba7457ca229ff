package messages_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-erpforms/pkg/messages"
)

func TestMessageString(t *testing.T) {
	cases := []struct {
		name string
		msg  messages.Message
		want string
	}{
		{name: "both", msg: messages.Bilingual("होय", "Yes"), want: "होय / Yes"},
		{name: "english only", msg: messages.Bilingual("", "Yes"), want: "Yes"},
		{name: "local only", msg: messages.Bilingual("होय", ""), want: "होय"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.String(); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCatalog_TranslatePicksHalfByLocale(t *testing.T) {
	catalog := messages.NewCatalog(nil)

	got, err := catalog.Translate("en-GB", string(messages.Yes))
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Yes" {
		t.Fatalf("english locale: got %q", got)
	}

	got, _ = catalog.Translate("mr", string(messages.Yes))
	if got != "होय" {
		t.Fatalf("marathi locale: got %q", got)
	}

	got, _ = catalog.Translate("", string(messages.Yes))
	if got != "होय / Yes" {
		t.Fatalf("empty locale should be bilingual, got %q", got)
	}

	if _, err := catalog.Translate("en", "nope"); !errors.Is(err, messages.ErrMissingMessage) {
		t.Fatalf("expected ErrMissingMessage, got %v", err)
	}
}

func TestCatalog_Overrides(t *testing.T) {
	catalog := messages.NewCatalog(map[messages.Key]messages.Message{
		messages.Yes: messages.Bilingual("हो", "Yep"),
		messages.No:  {},
	})
	if got := catalog.Get(messages.Yes).String(); got != "हो / Yep" {
		t.Fatalf("override ignored: %q", got)
	}
	if got := catalog.Get(messages.No).String(); got != "नाही / No" {
		t.Fatalf("zero override must keep default, got %q", got)
	}
	if got := catalog.Get("unknown.key").String(); got != "unknown.key" {
		t.Fatalf("unknown key fallback: %q", got)
	}
}

func TestFormatIndianNumber(t *testing.T) {
	if got := messages.FormatIndianNumber(1234567); got != "12,34,567" {
		t.Fatalf("want 12,34,567, got %q", got)
	}
	if got := messages.FormatIndianNumber(999); got != "999" {
		t.Fatalf("want 999, got %q", got)
	}
}
