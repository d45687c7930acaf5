package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength  = 200
	MaxPromptLength = 4000
)

// Project represents a single image-generation project owned by a user.
// It is intentionally storage-agnostic and used across repository, HTTP and client layers.
type Project struct {
	ID                string    `json:"id"`
	OwnerID           string    `json:"owner_id"`
	Title             string    `json:"title"`
	Prompt            string    `json:"prompt"`
	SourceImageRefs   []string  `json:"source_image_refs"`
	GeneratedImageRef *string   `json:"generated_image_ref,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Clone returns a copy that shares no memory with p.
func (p Project) Clone() Project {
	out := p
	out.SourceImageRefs = slices.Clone(p.SourceImageRefs)
	if p.GeneratedImageRef != nil {
		ref := *p.GeneratedImageRef
		out.GeneratedImageRef = &ref
	}
	return out
}

// Draft holds the caller-supplied fields of a project that does not exist yet.
type Draft struct {
	Title             string   `json:"title"`
	Prompt            string   `json:"prompt"`
	SourceImageRefs   []string `json:"source_image_refs"`
	GeneratedImageRef *string  `json:"generated_image_ref,omitempty"`
}

// Normalize trims the draft and fills in a dated title when none was given.
func (d Draft) Normalize(now time.Time) Draft {
	out := Draft{
		Title:           strings.TrimSpace(d.Title),
		Prompt:          strings.TrimSpace(d.Prompt),
		SourceImageRefs: make([]string, 0, len(d.SourceImageRefs)),
	}
	for _, ref := range d.SourceImageRefs {
		out.SourceImageRefs = append(out.SourceImageRefs, strings.TrimSpace(ref))
	}
	if d.GeneratedImageRef != nil {
		ref := strings.TrimSpace(*d.GeneratedImageRef)
		out.GeneratedImageRef = &ref
	}
	if out.Title == "" {
		out.Title = DefaultTitle(now)
	}
	return out
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Prompt) == "" {
		return fmt.Errorf("%w: prompt required", ErrValidation)
	}
	if utf8.RuneCountInString(d.Prompt) > MaxPromptLength {
		return fmt.Errorf("%w: prompt longer than %d characters", ErrValidation, MaxPromptLength)
	}
	if utf8.RuneCountInString(d.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", ErrValidation, MaxTitleLength)
	}
	for i, ref := range d.SourceImageRefs {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("%w: source image %d has no name", ErrValidation, i)
		}
	}
	return nil
}

// Project builds the record a draft becomes once assigned an id and owner.
func (d Draft) Project(id, ownerID string, createdAt time.Time) Project {
	return Project{
		ID:                id,
		OwnerID:           ownerID,
		Title:             d.Title,
		Prompt:            d.Prompt,
		SourceImageRefs:   d.SourceImageRefs,
		GeneratedImageRef: d.GeneratedImageRef,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}.Clone()
}

// DefaultTitle is used for projects created without a title.
func DefaultTitle(now time.Time) string {
	return "Project " + now.Format("2006-01-02")
}

// Patch lists the mutable fields of a project. Nil fields are left unchanged.
// Source images are fixed at creation and cannot be patched.
type Patch struct {
	Title             *string `json:"title,omitempty"`
	Prompt            *string `json:"prompt,omitempty"`
	GeneratedImageRef *string `json:"generated_image_ref,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Prompt == nil && p.GeneratedImageRef == nil
}

func (p Patch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		if utf8.RuneCountInString(title) > MaxTitleLength {
			return fmt.Errorf("%w: title longer than %d characters", ErrValidation, MaxTitleLength)
		}
	}
	if p.Prompt != nil {
		prompt := strings.TrimSpace(*p.Prompt)
		if prompt == "" {
			return fmt.Errorf("%w: prompt cannot be empty", ErrValidation)
		}
		if utf8.RuneCountInString(prompt) > MaxPromptLength {
			return fmt.Errorf("%w: prompt longer than %d characters", ErrValidation, MaxPromptLength)
		}
	}
	return nil
}

// ApplyTo returns a copy of prj with the patch applied.
func (p Patch) ApplyTo(prj Project) Project {
	out := prj.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Prompt != nil {
		out.Prompt = strings.TrimSpace(*p.Prompt)
	}
	if p.GeneratedImageRef != nil {
		ref := strings.TrimSpace(*p.GeneratedImageRef)
		out.GeneratedImageRef = &ref
	}
	return out
}

// Normalize returns the patch with its string fields trimmed.
func (p Patch) Normalize() Patch {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}
	return Patch{Title: trim(p.Title), Prompt: trim(p.Prompt), GeneratedImageRef: trim(p.GeneratedImageRef)}
}
