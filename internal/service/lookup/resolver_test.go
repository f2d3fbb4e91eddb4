package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/provider"
	"github.com/wordfall/wordfall/internal/service/translate"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// callLog records tier attempt order across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeDict struct {
	name    string
	log     *callLog
	results map[string]*provider.DictionaryResult
	err     error
}

func (f *fakeDict) FetchEntry(_ context.Context, term string) (*provider.DictionaryResult, error) {
	if f.log != nil {
		f.log.add(f.name)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[term], nil
}

type fakeTranslator struct {
	text string
	tag  domain.SourceTag
	err  error
}

func (f *fakeTranslator) Translate(_ context.Context, _ string, _ translate.Direction) (string, domain.SourceTag, error) {
	return f.text, f.tag, f.err
}

func runResult(word string) *provider.DictionaryResult {
	return &provider.DictionaryResult{
		Word:     word,
		Phonetic: "/rʌn/",
		Meanings: []provider.MeaningResult{
			{PartOfSpeech: "verb", Definitions: []provider.DefinitionResult{{Text: "to move fast"}}},
		},
	}
}

func TestResolveWordPrimaryWins(t *testing.T) {
	log := &callLog{}
	primary := &fakeDict{name: "primary", log: log, results: map[string]*provider.DictionaryResult{"run": runResult("run")}}
	secondary := &fakeDict{name: "secondary", log: log, results: map[string]*provider.DictionaryResult{"run": runResult("run")}}
	r := NewResolver(primary, secondary, &fakeTranslator{text: "跑", tag: domain.SourceTranslation}, testLogger())

	res := r.Resolve(context.Background(), "run")

	if res.InputType != domain.InputWord {
		t.Errorf("InputType = %q, want word", res.InputType)
	}
	if res.Record == nil || len(res.Record.Meanings) == 0 {
		t.Fatal("expected record with meanings")
	}
	if res.Source != domain.SourcePrimary {
		t.Errorf("Source = %q, want primary", res.Source)
	}
	if res.Record.Translation != "跑" || res.TranslationText != "跑" {
		t.Errorf("translation not joined: %q / %q", res.Record.Translation, res.TranslationText)
	}
	for _, c := range log.list() {
		if c == "secondary" {
			t.Error("secondary tier attempted after primary success")
		}
	}
}

func TestResolvePhraseTriesSecondaryFirst(t *testing.T) {
	log := &callLog{}
	primary := &fakeDict{name: "primary", log: log}
	secondary := &fakeDict{name: "secondary", log: log}
	r := NewResolver(primary, secondary, &fakeTranslator{}, testLogger())

	r.Resolve(context.Background(), "multi word phrase")

	calls := log.list()
	if len(calls) != 2 || calls[0] != "secondary" || calls[1] != "primary" {
		t.Errorf("tier order = %v, want [secondary primary]", calls)
	}
}

func TestResolveTierMissFallsThrough(t *testing.T) {
	primary := &fakeDict{name: "primary", err: errors.New("connection refused")}
	secondary := &fakeDict{name: "secondary", results: map[string]*provider.DictionaryResult{"run": runResult("run")}}
	r := NewResolver(primary, secondary, &fakeTranslator{}, testLogger())

	res := r.Resolve(context.Background(), "run")

	if res.Record == nil || res.Source != domain.SourceSecondary {
		t.Fatalf("expected secondary record, got source %q", res.Source)
	}
}

func TestResolveTranslationOnly(t *testing.T) {
	r := NewResolver(&fakeDict{}, &fakeDict{}, &fakeTranslator{text: "跑", tag: domain.SourceTranslation}, testLogger())

	res := r.Resolve(context.Background(), "zzzzq")

	if res.Record == nil {
		t.Fatal("expected translation-only record")
	}
	if len(res.Record.Meanings) != 0 || res.Record.Meanings == nil {
		t.Error("translation-only record must have empty, non-nil meanings")
	}
	if res.Record.Translation != "跑" || res.Source != domain.SourceTranslation {
		t.Errorf("got translation %q source %q", res.Record.Translation, res.Source)
	}
}

func TestResolveTotalExhaustion(t *testing.T) {
	r := NewResolver(&fakeDict{}, &fakeDict{}, &fakeTranslator{err: domain.ErrAuthMissing}, testLogger())

	res := r.Resolve(context.Background(), "zzzzq")

	if res.Record != nil {
		t.Error("expected nil record")
	}
	if res.TranslationText != "" || res.Source != "" {
		t.Error("expected empty translation and source")
	}
	if !res.CredentialsHint {
		t.Error("expected credentials hint when LLM tier was blocked")
	}
	if res.Message == "" {
		t.Error("expected a user-facing message on exhaustion")
	}
}

func TestExhaustionMessageByInputClass(t *testing.T) {
	r := NewResolver(&fakeDict{}, &fakeDict{}, &fakeTranslator{}, testLogger())

	word := r.Resolve(context.Background(), "zzzzq")
	phrase := r.Resolve(context.Background(), "zzzzq zzzzq")
	chinese := r.Resolve(context.Background(), "你好")

	if word.Message == "" || chinese.Message == "" {
		t.Fatal("expected messages on exhausted lookups")
	}
	if word.Message == chinese.Message {
		t.Error("chinese exhaustion must read differently from word exhaustion")
	}
	if phrase.Message != word.Message {
		t.Errorf("phrase message %q, want same wording as word", phrase.Message)
	}
}

func TestNoMessageOnSuccess(t *testing.T) {
	primary := &fakeDict{results: map[string]*provider.DictionaryResult{"run": runResult("run")}}
	r := NewResolver(primary, &fakeDict{}, &fakeTranslator{}, testLogger())

	res := r.Resolve(context.Background(), "run")

	if res.Message != "" {
		t.Errorf("unexpected message %q on a successful lookup", res.Message)
	}
}

func TestResolveChineseBridging(t *testing.T) {
	primary := &fakeDict{name: "primary", results: map[string]*provider.DictionaryResult{"hello": runResult("hello")}}
	r := NewResolver(primary, &fakeDict{}, &fakeTranslator{text: "Hello.", tag: domain.SourceTranslation}, testLogger())

	res := r.Resolve(context.Background(), "你好")

	if res.InputType != domain.InputChinese {
		t.Errorf("InputType = %q, want chinese", res.InputType)
	}
	if res.Record == nil {
		t.Fatal("expected bridged record")
	}
	if res.Record.Key != "hello" {
		t.Errorf("Key = %q, want hello (lower-cased, punctuation stripped)", res.Record.Key)
	}
	if res.Record.DisplayWord != "你好" {
		t.Errorf("DisplayWord = %q, want original Chinese text", res.Record.DisplayWord)
	}
	if res.Record.Translation != "Hello." {
		t.Errorf("Translation = %q, want unstripped translated string", res.Record.Translation)
	}
	if res.Source != domain.SourcePrimary {
		t.Errorf("Source = %q, want primary", res.Source)
	}
}

func TestResolveChineseTranslationOnly(t *testing.T) {
	r := NewResolver(&fakeDict{}, &fakeDict{}, &fakeTranslator{text: "hello", tag: domain.SourceLLM}, testLogger())

	res := r.Resolve(context.Background(), "你好")

	if res.Record == nil || res.Record.Key != "hello" {
		t.Fatal("expected translation-only bridge record")
	}
	if res.Record.DisplayWord != "你好" || res.Record.Translation != "hello" {
		t.Errorf("DisplayWord/Translation = %q/%q", res.Record.DisplayWord, res.Record.Translation)
	}
	if res.Source != domain.SourceLLM {
		t.Errorf("Source = %q, want llm", res.Source)
	}
}

func TestResolveChineseAllMiss(t *testing.T) {
	r := NewResolver(&fakeDict{}, &fakeDict{}, &fakeTranslator{}, testLogger())

	res := r.Resolve(context.Background(), "你好")

	if res.Record != nil {
		t.Error("expected nil record")
	}
}

func TestResolveSequenceTokens(t *testing.T) {
	r := NewResolver(&fakeDict{}, &fakeDict{}, &fakeTranslator{}, testLogger())

	first := r.Resolve(context.Background(), "one")
	second := r.Resolve(context.Background(), "two")

	if second.Seq <= first.Seq {
		t.Errorf("sequence tokens not increasing: %d then %d", first.Seq, second.Seq)
	}
	if r.Latest() != second.Seq {
		t.Errorf("Latest() = %d, want %d", r.Latest(), second.Seq)
	}
}

func TestResolveNoCrossTierMerge(t *testing.T) {
	// Primary has no phonetic; secondary would add one. The winning tier's
	// record must be returned unmodified.
	primary := &fakeDict{name: "primary", results: map[string]*provider.DictionaryResult{
		"run": {Word: "run", Meanings: []provider.MeaningResult{
			{PartOfSpeech: "verb", Definitions: []provider.DefinitionResult{{Text: "to move fast"}}},
		}},
	}}
	secondary := &fakeDict{name: "secondary", results: map[string]*provider.DictionaryResult{"run": runResult("run")}}
	r := NewResolver(primary, secondary, &fakeTranslator{}, testLogger())

	res := r.Resolve(context.Background(), "run")

	if res.Source != domain.SourcePrimary {
		t.Fatalf("Source = %q, want primary", res.Source)
	}
	if res.Record.Phonetic != "" {
		t.Error("field from a later tier leaked into the winning record")
	}
}
