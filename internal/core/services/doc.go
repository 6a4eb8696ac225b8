// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - ProjectService: upload, list, delete and per-page reads
//   - FormService: get-or-generate with a write-once page cache
//   - BulkDispatcher: bounded worker pool for whole-project generation
//   - SettingsService: provider and prompt configuration
package services
