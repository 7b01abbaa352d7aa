package postprocessors

import (
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/normalisers"
	"github.com/custodia-labs/drafter/internal/postprocessors/chunker"
)

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline(nil, nil)
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if !p.Handles("notes.md") {
		t.Error("expected markdown to be handled")
	}
	if p.Handles("photo.png") {
		t.Error("expected png not to be handled")
	}
}

func TestPipeline_Process_Markdown(t *testing.T) {
	p := NewPipeline(nil, nil)

	fragments, err := p.Process("/notes/team.md", []byte("# Vitality\n\nRemote teams **thrive**."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if fragments[0].SourceID != "/notes/team.md" {
		t.Errorf("expected source ID /notes/team.md, got %q", fragments[0].SourceID)
	}
	if fragments[0].Text != "Vitality\n\nRemote teams thrive." {
		t.Errorf("unexpected text %q", fragments[0].Text)
	}
}

func TestPipeline_Process_Chunks(t *testing.T) {
	p := NewPipeline(nil, chunker.New(chunker.WithChunkSize(10), chunker.WithOverlap(0)))

	fragments, err := p.Process("long.txt", []byte(strings.Repeat("a", 25)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(fragments))
	}
	for i, f := range fragments {
		if f.Sequence != i {
			t.Errorf("fragment %d has sequence %d", i, f.Sequence)
		}
	}
}

func TestPipeline_Process_UnknownExtensionFallsBack(t *testing.T) {
	p := NewPipeline(nil, nil)

	fragments, err := p.Process("Makefile", []byte("build: test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 1 || fragments[0].Text != "build: test" {
		t.Errorf("unexpected fragments %+v", fragments)
	}
}

func TestPipeline_Process_NoNormaliser(t *testing.T) {
	p := NewPipeline(normalisers.NewRegistry(nil), nil)

	_, err := p.Process("notes.md", []byte("text"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipeline_Process_Binary(t *testing.T) {
	p := NewPipeline(nil, nil)

	_, err := p.Process("blob.txt", []byte{0xff, 0xfe, 0x00})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "normaliser plaintext") {
		t.Errorf("expected normaliser name in error, got %v", err)
	}
}

func TestPipeline_Process_Empty(t *testing.T) {
	p := NewPipeline(nil, nil)

	fragments, err := p.Process("empty.md", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 0 {
		t.Errorf("expected no fragments, got %d", len(fragments))
	}
}
