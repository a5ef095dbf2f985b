// Package transform converts raw rendered forum markup into the structured
// form stored in the search index: plain text, the author's own prose with
// quoted spans removed, resolved quote sub-documents, and de-duplicated link
// and image sets.
//
// Transformation is pure and local: a malformed quote header or link target
// degrades to a smaller result, never to a failed record.
package transform
