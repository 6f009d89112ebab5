package dedup

import (
	"sort"
	"strings"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// Trennzeichen der zusammengeführten Felder.
const (
	AuthorSeparator     = "; "
	AnnotationSeparator = " | "
	SourceSeparator     = ", "
)

type fieldKind int

const (
	kindDefault fieldKind = iota
	kindAuthors
	kindAnnotation
)

func kindOf(key string) fieldKind {
	switch strings.ToLower(key) {
	case "author", "authors":
		return kindAuthors
	case "extra", "notes", "note":
		return kindAnnotation
	default:
		return kindDefault
	}
}

// Merge kombiniert zwei Records derselben Arbeit. Beide Eingaben bleiben unverändert.
func Merge(existing, incoming models.Record) models.Record {
	ex := existing.Normalize()
	in := incoming.Normalize()

	out := models.Record{
		Title:   ex.Title,
		DOI:     preferIncoming(in.DOI, ex.DOI),
		PMID:    preferIncoming(in.PMID, ex.PMID),
		TrialID: preferIncoming(in.TrialID, ex.TrialID),
		Source:  mergeSources(ex.Source, in.Source),
	}
	if out.Title == "" {
		out.Title = in.Title
	}

	for _, key := range unionKeys(ex.Fields, in.Fields) {
		a, b := ex.Fields[key], in.Fields[key]
		var v string
		switch kindOf(key) {
		case kindAuthors:
			v = mergeAuthors(a, b)
		case kindAnnotation:
			v = mergeAnnotations(a, b)
		default:
			v = preferIncoming(b, a)
		}
		out.SetField(key, v)
	}
	return out
}

func preferIncoming(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}

func unionKeys(a, b map[string]string) []string {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, m := range []map[string]string{a, b} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// mergeSources bildet die sortierte, duplikatfreie Vereinigung beider Herkunftsangaben.
func mergeSources(a, b string) string {
	set := map[string]bool{}
	for _, s := range []string{a, b} {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
			if part = strings.TrimSpace(part); part != "" {
				set[part] = true
			}
		}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, SourceSeparator)
}

// mergeAuthors vereinigt die Autoren beider Seiten ohne Beachtung der Groß-/Kleinschreibung.
// Bei Gleichheit gewinnt die Schreibweise des bestehenden Records.
func mergeAuthors(a, b string) string {
	type author struct{ key, name string }
	var all []author
	seen := map[string]bool{}
	for _, s := range []string{a, b} {
		for _, name := range SplitAuthors(s) {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, author{key: key, name: name})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].key < all[j].key })
	names := make([]string, len(all))
	for i, au := range all {
		names[i] = au.name
	}
	return strings.Join(names, AuthorSeparator)
}

// SplitAuthors zerlegt eine Autorenliste an Semikolons und an Kommas.
// Ein Komma trennt nur dann Autoren, wenn jeder Teil mehrere Wörter hat ("J Smith, A Doe");
// "Smith, J" bleibt ein einzelner Name.
func SplitAuthors(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = collapseSpaces(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, ",") {
			out = append(out, part)
			continue
		}
		subs := strings.Split(part, ",")
		multiWord := true
		for i := range subs {
			subs[i] = collapseSpaces(subs[i])
			if subs[i] != "" && !strings.Contains(subs[i], " ") {
				multiWord = false
			}
		}
		if !multiWord {
			out = append(out, part)
			continue
		}
		for _, sub := range subs {
			if sub != "" {
				out = append(out, sub)
			}
		}
	}
	return out
}

// mergeAnnotations hängt nur Segmente an, die noch nicht vorhanden sind.
func mergeAnnotations(a, b string) string {
	var segments []string
	seen := map[string]bool{}
	for _, s := range []string{a, b} {
		for _, seg := range strings.Split(s, strings.TrimSpace(AnnotationSeparator)) {
			seg = strings.TrimSpace(seg)
			if seg == "" || seen[seg] {
				continue
			}
			seen[seg] = true
			segments = append(segments, seg)
		}
	}
	return strings.Join(segments, AnnotationSeparator)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
