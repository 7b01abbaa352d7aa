package chunker

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize || p.overlap != DefaultChunkOverlap {
			t.Errorf("expected defaults, got size %d overlap %d", p.chunkSize, p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap != 25 {
			t.Errorf("expected overlap 25, got %d", p.overlap)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize || p.overlap != DefaultChunkOverlap {
			t.Errorf("expected defaults, got size %d overlap %d", p.chunkSize, p.overlap)
		}
	})
}

func TestProcessor_Chunk_Empty(t *testing.T) {
	if got := New().Chunk("doc", ""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := New().Chunk("doc", "   \n\t "); len(got) != 0 {
		t.Errorf("expected no fragments for blank content, got %d", len(got))
	}
}

func TestProcessor_Chunk_SmallContent(t *testing.T) {
	frags := New().Chunk("notes.md", "Vitality Complex keeps energy stable.")

	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if frags[0].SourceID != "notes.md" || frags[0].Sequence != 0 {
		t.Errorf("unexpected fragment attribution: %+v", frags[0])
	}
	if frags[0].Text != "Vitality Complex keeps energy stable." {
		t.Errorf("unexpected text %q", frags[0].Text)
	}
}

func TestProcessor_Chunk_Overlap(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(4))
	frags := p.Chunk("doc", "abcdefghijklmnopqrst")

	want := []string{"abcdefghij", "ghijklmnop", "mnopqrst"}
	if len(frags) != len(want) {
		t.Fatalf("expected %d fragments, got %d", len(want), len(frags))
	}
	for i, w := range want {
		if frags[i].Text != w {
			t.Errorf("fragment %d: expected %q, got %q", i, w, frags[i].Text)
		}
		if frags[i].Sequence != i {
			t.Errorf("fragment %d: expected sequence %d, got %d", i, i, frags[i].Sequence)
		}
	}
}

func TestProcessor_Chunk_ExactChunkSize(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))
	frags := p.Chunk("doc", strings.Repeat("x", 10))

	if len(frags) != 1 {
		t.Errorf("expected 1 fragment, got %d", len(frags))
	}
}

func TestProcessor_Chunk_CountsCharacters(t *testing.T) {
	p := New(WithChunkSize(3), WithOverlap(0))
	frags := p.Chunk("doc", "ééééé")

	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[0].Text != "ééé" || frags[1].Text != "éé" {
		t.Errorf("multi-byte characters split incorrectly: %q, %q", frags[0].Text, frags[1].Text)
	}
}

func TestProcessor_Chunk_SkipsBlankWindows(t *testing.T) {
	p := New(WithChunkSize(5), WithOverlap(0))
	frags := p.Chunk("doc", "hello"+strings.Repeat(" ", 5)+"world")

	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[1].Text != "world" || frags[1].Sequence != 1 {
		t.Errorf("expected contiguous sequence, got %+v", frags[1])
	}
}
