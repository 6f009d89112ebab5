// Package crossref enthält den Provider für die CrossRef REST API.
package crossref

// WorksResponse ist die Antwort von /works.
type WorksResponse struct {
	Status  string `json:"status"`
	Message struct {
		TotalResults int    `json:"total-results"`
		Items        []Work `json:"items"`
	} `json:"message"`
}

// Work ist ein einzelnes Werk aus der CrossRef-Antwort.
type Work struct {
	DOI            string     `json:"DOI"`
	Title          []string   `json:"title"`
	ContainerTitle []string   `json:"container-title"`
	ShortContainer []string   `json:"short-container-title"`
	ISSN           []string   `json:"ISSN"`
	Volume         string     `json:"volume"`
	Issue          string     `json:"issue"`
	Page           string     `json:"page"`
	Publisher      string     `json:"publisher"`
	Type           string     `json:"type"`
	Language       string     `json:"language"`
	URL            string     `json:"URL"`
	Abstract       string     `json:"abstract"`
	Author         []Author   `json:"author"`
	Issued         DateParts  `json:"issued"`
	PublishedPrint *DateParts `json:"published-print,omitempty"`
}

// Author ist ein Autor eines Werks.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// DateParts ist CrossRefs Datumsdarstellung: [[Jahr, Monat, Tag]], einzelne Teile optional.
type DateParts struct {
	DateParts [][]*int `json:"date-parts"`
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
