// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ProjectStore: Project and page persistence, including the write-once form cache
//   - PDFCodec: Page counting, text extraction and single-page splitting
//   - FormGenerator: Turns a single-page PDF into HTML via a generative model
//   - ChatClient: Opens sessions with the external chat service and uploads PDFs
//   - ConfigStore: Application configuration
//   - PromptStore: Form generation instructions
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LanguageDetector: Tags page text with its language at ingestion
//   - FormInspector: Summarises generated HTML and wraps fragments for display
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
