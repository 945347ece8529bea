// Package arxiv provides a client for the arXiv Atom query API.
//
// Endpoint: https://export.arxiv.org/api/query
//
// The API has no date-range filter; callers retrieve pages sorted by
// submission time (descending) and window the results themselves. arXiv asks
// for roughly one request every three seconds, which the client enforces
// between pages.
package arxiv
