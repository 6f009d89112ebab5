// Package pubmed enthält die Logik für die Interaktion mit den NCBI E-Utilities.
package pubmed

import (
	"encoding/xml"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
)

// ESearchResponse repräsentiert die JSON-Antwort von ESearch für die ID-Suche.
type ESearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IdList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// PubmedArticleSet repräsentiert das gesamte XML-Dokument von efetch.
type PubmedArticleSet struct {
	XMLName       xml.Name        `xml:"PubmedArticleSet"`
	PubmedArticle []PubmedArticle `xml:"PubmedArticle"`
}

// PubmedArticle repräsentiert einen einzelnen Artikel in der XML-Antwort.
type PubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    MarkupText `xml:"ArticleTitle"`
			Abstract struct {
				Text []AbstractText `xml:"AbstractText"`
			} `xml:"Abstract"`
			Authors []Author `xml:"AuthorList>Author"`
			Journal struct {
				Title           string `xml:"Title"`
				ISOAbbreviation string `xml:"ISOAbbreviation"`
				ISSN            string `xml:"ISSN"`
				JournalIssue    struct {
					Volume  string  `xml:"Volume"`
					Issue   string  `xml:"Issue"`
					PubDate PubDate `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
			Pagination struct {
				MedlinePgn string `xml:"MedlinePgn"`
			} `xml:"Pagination"`
			ELocationID []struct {
				IDType  string `xml:"EIdType,attr"`
				ValidYN string `xml:"ValidYN,attr"`
				Value   string `xml:",chardata"`
			} `xml:"ELocationID"`
			Language         []string `xml:"Language"`
			PublicationTypes []string `xml:"PublicationTypeList>PublicationType"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDs []struct {
			IDType string `xml:"IdType,attr"`
			Value  string `xml:",chardata"`
		} `xml:"ArticleIdList>ArticleId"`
	} `xml:"PubmedData"`
}

// Author ist ein Eintrag der AuthorList.
type Author struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	Initials       string `xml:"Initials"`
	CollectiveName string `xml:"CollectiveName"`
}

// PubDate ist das Erscheinungsdatum einer Ausgabe, entweder strukturiert oder als MedlineDate.
type PubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// AbstractText ist ein (ggf. gelabelter) Abschnitt des Abstracts.
type AbstractText struct {
	Label string `xml:"Label,attr"`
	MarkupText
}

// MarkupText nimmt Elemente mit Inline-Markup (<i>, <sup>, ...) auf.
type MarkupText struct {
	InnerXML string `xml:",innerxml"`
}

// Text liefert den Inhalt ohne Tags und mit dekodierten Entities.
func (m MarkupText) Text() string {
	return providers.StripMarkup(m.InnerXML)
}
