package domain

// FormSource tells the caller whether form HTML was served from the page
// cache or produced by a fresh model call.
type FormSource string

const (
	// FormSourceCache means the HTML was already stored on the page.
	FormSourceCache FormSource = "cache"

	// FormSourceGenerated means the HTML was produced by this request.
	FormSourceGenerated FormSource = "generated"
)

// String returns the string representation.
func (s FormSource) String() string {
	return string(s)
}

// FormResult is the outcome of a get-or-generate request.
type FormResult struct {
	HTML   string     `json:"html_content" yaml:"html_content"`
	Source FormSource `json:"source" yaml:"source"`
	Stats  *FormStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// FormStats summarises the structure of a generated form.
type FormStats struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Fields counts input, select and textarea elements.
	Fields int `json:"fields" yaml:"fields"`

	// LowConfidence counts elements the model marked red for human review.
	LowConfidence int `json:"low_confidence" yaml:"low_confidence"`
}

// PromptVariant selects which form generation instruction is sent.
type PromptVariant string

const (
	// PromptStandard is the canonical form generation prompt.
	PromptStandard PromptVariant = "standard"

	// PromptSignatures adds signature cross-referencing to the standard prompt.
	PromptSignatures PromptVariant = "signatures"
)

// IsValid returns true if the variant is recognised.
func (v PromptVariant) IsValid() bool {
	return v == PromptStandard || v == PromptSignatures
}

// String returns the string representation.
func (v PromptVariant) String() string {
	return string(v)
}

// PromptName returns the prompt store key for the variant.
func (v PromptVariant) PromptName() string {
	if v == PromptSignatures {
		return "form_generation_signatures"
	}
	return "form_generation"
}
