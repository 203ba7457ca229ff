package draft_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-erpforms/pkg/draft"
	"github.com/goliatone/go-erpforms/pkg/model"
	"github.com/goliatone/go-erpforms/pkg/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	store := draft.NewStore(storage.NewMemory(0))

	want := model.Draft{"name": "Asha", "dob": ""}
	if !store.Save("admission", want) {
		t.Fatalf("expected save to succeed")
	}

	got, ok := store.Load("admission")
	if !ok {
		t.Fatalf("expected draft present")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}

	if _, ok := store.Load("bonafide"); ok {
		t.Fatalf("expected no draft for another form")
	}
}

func TestStoreUsesPrefixedKey(t *testing.T) {
	mem := storage.NewMemory(0)
	store := draft.NewStore(mem)
	store.Save("admission", model.Draft{"name": "Asha"})

	raw, ok, _ := mem.GetItem("autosave_admission")
	if !ok {
		t.Fatalf("expected autosave_admission key")
	}
	if raw != `{"name":"Asha"}` {
		t.Fatalf("unexpected payload %s", raw)
	}

	custom := draft.NewStore(mem, draft.WithKeyPrefix("erp:"))
	if got := custom.Key("admission"); got != "erp:admission" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestStoreSaveReplacesWholeDraft(t *testing.T) {
	store := draft.NewStore(storage.NewMemory(0))
	store.Save("admission", model.Draft{"name": "Asha", "dob": "2012-01-01"})
	store.Save("admission", model.Draft{"name": "Asha"})

	got, _ := store.Load("admission")
	if diff := cmp.Diff(model.Draft{"name": "Asha"}, got); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreClearIsIdempotent(t *testing.T) {
	store := draft.NewStore(storage.NewMemory(0))
	store.Save("admission", model.Draft{"name": "Asha"})

	store.Clear("admission")
	store.Clear("admission")

	if _, ok := store.Load("admission"); ok {
		t.Fatalf("expected draft cleared")
	}
}

func TestStoreCorruptPayloadIsAbsent(t *testing.T) {
	mem := storage.NewMemory(0)
	_ = mem.SetItem("autosave_admission", "{broken")
	var logs bytes.Buffer
	store := draft.NewStore(mem, draft.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	if _, ok := store.Load("admission"); ok {
		t.Fatalf("expected corrupt draft to load as absent")
	}
	if !strings.Contains(logs.String(), "draft payload corrupt") {
		t.Fatalf("expected corruption logged, got %q", logs.String())
	}

	_ = mem.SetItem("autosave_admission", "null")
	if _, ok := store.Load("admission"); ok {
		t.Fatalf("expected null draft to load as absent")
	}
}

func TestStoreQuotaFailureReturnsFalse(t *testing.T) {
	store := draft.NewStore(storage.NewMemory(16))

	if store.Save("admission", model.Draft{"address": strings.Repeat("x", 64)}) {
		t.Fatalf("expected save to fail over quota")
	}
	if _, ok := store.Load("admission"); ok {
		t.Fatalf("expected nothing stored")
	}
}

type failingBackend struct{}

func (failingBackend) GetItem(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingBackend) SetItem(string, string) error         { return errors.New("disk gone") }
func (failingBackend) RemoveItem(string) error              { return errors.New("disk gone") }

func TestStoreBackendErrorsAreSwallowed(t *testing.T) {
	store := draft.NewStore(failingBackend{})

	if store.Save("admission", model.Draft{"name": "Asha"}) {
		t.Fatalf("expected save false")
	}
	if _, ok := store.Load("admission"); ok {
		t.Fatalf("expected load absent")
	}
	store.Clear("admission")
}

func TestStoreWithoutBackend(t *testing.T) {
	store := draft.NewStore(nil)

	if store.Save("admission", model.Draft{"name": "Asha"}) {
		t.Fatalf("expected save false without backend")
	}
	if _, ok := store.Load("admission"); ok {
		t.Fatalf("expected load absent without backend")
	}
	store.Clear("admission")

	var nilStore *draft.Store
	if nilStore.Save("admission", nil) {
		t.Fatalf("expected nil store save false")
	}
}
