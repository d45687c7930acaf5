package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestDraft_Normalize(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("fills in dated title", func(t *testing.T) {
		d := Draft{Prompt: "  studio light ", SourceImageRefs: []string{" a.png"}}.Normalize(now)
		assert.Equal(t, "Project 2026-03-14", d.Title)
		assert.Equal(t, "studio light", d.Prompt)
		assert.Equal(t, []string{"a.png"}, d.SourceImageRefs)
	})

	t.Run("keeps explicit title", func(t *testing.T) {
		d := Draft{Title: "Shoot", Prompt: "x"}.Normalize(now)
		assert.Equal(t, "Shoot", d.Title)
		assert.NotNil(t, d.SourceImageRefs)
	})
}

func TestDraft_Validate(t *testing.T) {
	long := make([]byte, MaxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}

	cases := []struct {
		name  string
		draft Draft
		ok    bool
	}{
		{"valid", Draft{Title: "Shoot", Prompt: "studio light"}, true},
		{"missing prompt", Draft{Title: "Shoot", Prompt: "  "}, false},
		{"title too long", Draft{Title: string(long), Prompt: "p"}, false},
		{"multibyte title at limit", Draft{Title: strings.Repeat("é", MaxTitleLength), Prompt: "p"}, true},
		{"multibyte title over limit", Draft{Title: strings.Repeat("é", MaxTitleLength+1), Prompt: "p"}, false},
		{"blank source ref", Draft{Prompt: "p", SourceImageRefs: []string{"a.png", ""}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

func TestPatch(t *testing.T) {
	base := Project{ID: "p1", Title: "Shoot", Prompt: "studio", SourceImageRefs: []string{"a.png"}}

	t.Run("empty patch is invalid", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.ErrorIs(t, Patch{}.Validate(), ErrValidation)
	})

	t.Run("blank title is invalid", func(t *testing.T) {
		assert.ErrorIs(t, Patch{Title: strPtr(" ")}.Validate(), ErrValidation)
	})

	t.Run("applies only provided fields", func(t *testing.T) {
		out := Patch{Title: strPtr("Shoot v2")}.ApplyTo(base)
		assert.Equal(t, "Shoot v2", out.Title)
		assert.Equal(t, "studio", out.Prompt)
		assert.Equal(t, "Shoot", base.Title)
	})

	t.Run("sets generated image", func(t *testing.T) {
		out := Patch{GeneratedImageRef: strPtr("img/1.png")}.ApplyTo(base)
		if assert.NotNil(t, out.GeneratedImageRef) {
			assert.Equal(t, "img/1.png", *out.GeneratedImageRef)
		}
	})
}

func TestProject_Clone(t *testing.T) {
	ref := "g.png"
	p := Project{SourceImageRefs: []string{"a.png"}, GeneratedImageRef: &ref}
	c := p.Clone()
	c.SourceImageRefs[0] = "b.png"
	*c.GeneratedImageRef = "h.png"

	assert.Equal(t, "a.png", p.SourceImageRefs[0])
	assert.Equal(t, "g.png", *p.GeneratedImageRef)
}
