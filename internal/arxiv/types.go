package arxiv

import "encoding/xml"

// feed is the Atom envelope returned by the query API.
type feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []Entry  `xml:"entry"`
}

// Entry is one raw paper record as returned by arXiv.
type Entry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  string     `xml:"published"`
	Updated    string     `xml:"updated"`
	Categories []Category `xml:"category"`
	Authors    []Author   `xml:"author"`
}

// Category is a taxonomy tag attached to an entry.
type Category struct {
	Term string `xml:"term,attr"`
}

// Author is one author name attached to an entry.
type Author struct {
	Name string `xml:"name"`
}
