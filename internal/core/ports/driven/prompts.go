package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names fall back to the built-in default when one exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
const (
	// PromptFormGeneration is the canonical instruction for turning a page
	// into an editable HTML form. It has no format placeholders.
	PromptFormGeneration = "form_generation"

	// PromptFormGenerationSignatures extends PromptFormGeneration with
	// signature cross-referencing.
	PromptFormGenerationSignatures = "form_generation_signatures"
)
