// Package http exposes projects, pages and form generation over a REST API
// built on gin.
//
// Routes:
//
//	POST   /projects/                                   upload a PDF (multipart "file")
//	GET    /projects/                                   list projects
//	GET    /projects/:id                                get a project
//	DELETE /projects/:id                                delete a project and its pages
//	GET    /projects/:id/pages/                         list pages
//	GET    /projects/:id/pages/:n/pdf                   single-page PDF
//	GET    /projects/:id/pages/:n/text                  page with extracted text
//	POST   /projects/:id/pages/:n/form/generate         generate or fetch the cached form
//	GET    /projects/:id/pages/:n/form/html             cached form only
//	GET    /projects/:id/pages/:n/html_view             cached form as a page
//	GET    /projects/generate-all-forms/?project_id=    start a bulk batch
//	GET    /projects/generate-all-forms/:batch_id       bulk batch progress
//	GET    /healthz                                     liveness
//
// Errors are returned as {"detail": "..."}.
package http
