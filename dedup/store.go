package dedup

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// Handle adressiert einen gespeicherten Record; es entspricht seiner Einfügeposition.
type Handle int

// Outcome beschreibt das Ergebnis eines Upserts.
type Outcome int

const (
	Inserted Outcome = iota + 1
	Merged
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Merged:
		return "merged"
	default:
		return "unknown"
	}
}

// MarshalText schreibt das Ergebnis als "inserted" bzw. "merged".
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UpsertResult ist das Ergebnis von RecordStore.Upsert.
type UpsertResult struct {
	Outcome   Outcome       `json:"outcome"`
	Handle    Handle        `json:"handle"`
	Rule      string        `json:"rule,omitempty"`
	Record    models.Record `json:"record"`
	Conflicts []ReportEntry `json:"conflicts,omitempty"`
}

type storedRecord struct {
	rec       models.Record
	normTitle string
}

func newStoredRecord(r models.Record) storedRecord {
	return storedRecord{rec: r, normTitle: r.NormalizedTitle()}
}

// RecordStore hält die deduplizierten Records samt Identifikator-Indizes.
// Alle Mutationen laufen unter einem Mutex, damit Abgleich und Ersetzen atomar bleiben.
type RecordStore struct {
	mu      sync.RWMutex
	matcher Matcher
	logger  *zap.Logger

	records   []storedRecord
	byDOI     map[string]Handle
	byPMID    map[string]Handle
	byTrialID map[string]Handle
	byTitle   map[string]Handle
	report    []ReportEntry
}

// NewRecordStore erstellt einen leeren Store.
func NewRecordStore(matcher Matcher, logger *zap.Logger) *RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecordStore{matcher: matcher, logger: logger}
	s.reset()
	return s
}

func (s *RecordStore) reset() {
	s.records = nil
	s.byDOI = map[string]Handle{}
	s.byPMID = map[string]Handle{}
	s.byTrialID = map[string]Handle{}
	s.byTitle = map[string]Handle{}
	s.report = nil
}

// Upsert fügt einen Record ein oder führt ihn mit dem passenden gespeicherten Record zusammen.
func (s *RecordStore) Upsert(rec models.Record) UpsertResult {
	in := rec.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	h, rule, ok := s.matcher.FindMatch(in, storeIndex{s})
	if !ok {
		h = Handle(len(s.records))
		s.records = append(s.records, newStoredRecord(in))
		conflicts := s.reindex(h, models.Record{}, in, claimantWins)
		s.logger.Debug("Record eingefügt",
			zap.Int("handle", int(h)),
			zap.String("canonical_id", in.CanonicalID()),
			zap.String("source", in.Source))
		return UpsertResult{Outcome: Inserted, Handle: h, Record: in.Clone(), Conflicts: conflicts}
	}

	old := s.records[h].rec
	merged := Merge(old, in)
	s.records[h] = newStoredRecord(merged)
	s.report = append(s.report, ReportEntry{
		Kind:       EntryMerged,
		Handle:     h,
		Identifier: merged.CanonicalID(),
		Rule:       rule.String(),
		Source:     in.Source,
		URL:        in.Field(models.FieldURL),
	})
	conflicts := s.reindex(h, old, merged, claimantWins)
	s.logger.Debug("Record zusammengeführt",
		zap.Int("handle", int(h)),
		zap.String("rule", rule.String()),
		zap.String("canonical_id", merged.CanonicalID()),
		zap.String("source", in.Source))
	return UpsertResult{Outcome: Merged, Handle: h, Rule: rule.String(), Record: merged.Clone(), Conflicts: conflicts}
}

// ownerRule entscheidet, wer einen umstrittenen Index-Eintrag behält.
type ownerRule func(s *RecordStore, owner, claimant Handle) Handle

// claimantWins gilt beim Upsert: h wurde über den stärksten Identifikator gefunden.
func claimantWins(_ *RecordStore, _, claimant Handle) Handle {
	return claimant
}

// doiThenFirst gilt beim Restore: ein Record mit DOI schlägt einen ohne,
// sonst bleibt der Eintrag beim ersten Anspruch.
func doiThenFirst(s *RecordStore, owner, claimant Handle) Handle {
	if s.records[claimant].rec.DOI != "" && s.records[owner].rec.DOI == "" {
		return claimant
	}
	return owner
}

// reindex gleicht die Indizes an den neuen Stand von Record h an.
func (s *RecordStore) reindex(h Handle, old, cur models.Record, keep ownerRule) []ReportEntry {
	var conflicts []ReportEntry
	for _, ix := range []struct {
		field    string
		m        map[string]Handle
		old, cur string
	}{
		{FieldDOI, s.byDOI, old.DOI, cur.DOI},
		{FieldPMID, s.byPMID, old.PMID, cur.PMID},
		{FieldTrialID, s.byTrialID, old.TrialID, cur.TrialID},
	} {
		if ix.old != "" && ix.old != ix.cur {
			if owner, ok := ix.m[ix.old]; ok && owner == h {
				delete(ix.m, ix.old)
			}
			if ix.cur != "" {
				conflicts = append(conflicts, ReportEntry{
					Kind:        EntrySupersededIdentifier,
					Handle:      h,
					Identifier:  cur.CanonicalID(),
					Field:       ix.field,
					Value:       ix.old,
					Replacement: ix.cur,
				})
			}
		}
		if ix.cur == "" {
			continue
		}
		owner, ok := ix.m[ix.cur]
		if !ok || owner == h {
			ix.m[ix.cur] = h
			continue
		}
		kept, other := h, owner
		if keep(s, owner, h) == owner {
			kept, other = owner, h
		}
		conflicts = append(conflicts, ReportEntry{
			Kind:       EntrySharedIdentifier,
			Handle:     kept,
			Identifier: s.records[kept].rec.CanonicalID(),
			Field:      ix.field,
			Value:      ix.cur,
			Other:      other,
		})
		ix.m[ix.cur] = kept
	}

	oldHash, curHash := old.TitleHash(), cur.TitleHash()
	if oldHash != "" && oldHash != curHash {
		if owner, ok := s.byTitle[oldHash]; ok && owner == h {
			delete(s.byTitle, oldHash)
		}
	}
	if curHash != "" {
		if _, ok := s.byTitle[curHash]; !ok {
			s.byTitle[curHash] = h
		}
	}

	for _, c := range conflicts {
		s.logger.Warn("Identifikator-Konflikt",
			zap.String("kind", string(c.Kind)),
			zap.String("field", c.Field),
			zap.String("value", c.Value),
			zap.Int("kept", int(c.Handle)),
			zap.Int("other", int(c.Other)),
			zap.String("replacement", c.Replacement))
	}
	s.report = append(s.report, conflicts...)
	return conflicts
}

// Restore ersetzt den Inhalt durch bereits deduplizierte Records, ohne sie erneut abzugleichen.
// Umstrittene Identifikatoren gehen an den Record mit DOI, sonst an den ersten Anspruch.
func (s *RecordStore) Restore(recs []models.Record) []ReportEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	var conflicts []ReportEntry
	for _, r := range recs {
		r = r.Normalize()
		h := Handle(len(s.records))
		s.records = append(s.records, newStoredRecord(r))
		conflicts = append(conflicts, s.reindex(h, models.Record{}, r, doiThenFirst)...)
	}
	return conflicts
}

// All liefert Kopien aller Records in Einfügereihenfolge.
func (s *RecordStore) All() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Record, len(s.records))
	for i, sr := range s.records {
		out[i] = sr.rec.Clone()
	}
	return out
}

// Export projiziert alle Records auf das Schema, eine Zeile pro Record.
func (s *RecordStore) Export(schema Schema) []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]Row, len(s.records))
	for i, sr := range s.records {
		rows[i] = schema.Project(sr.rec)
	}
	return rows
}

// Get liefert den Record zu einem Handle.
func (s *RecordStore) Get(h Handle) (models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if h < 0 || int(h) >= len(s.records) {
		return models.Record{}, false
	}
	return s.records[h].rec.Clone(), true
}

// Lookup löst eine DOI, PMID, Registernummer oder einen Titel-Hash auf.
func (s *RecordStore) Lookup(id string) (Handle, models.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := []struct {
		m   map[string]Handle
		key string
	}{
		{s.byDOI, models.NormalizeDOI(id)},
		{s.byTrialID, models.NormalizeTrialID(id)},
		{s.byTitle, id},
	}
	if pmid := models.NormalizePMID(id); pmid != "" && len(pmid) == len(id) {
		candidates = append([]struct {
			m   map[string]Handle
			key string
		}{{s.byPMID, pmid}}, candidates...)
	}
	for _, c := range candidates {
		if c.key == "" {
			continue
		}
		if h, ok := c.m[c.key]; ok {
			return h, s.records[h].rec.Clone(), true
		}
	}
	return 0, models.Record{}, false
}

// Match liefert den Treffer für rec, ohne den Store zu verändern.
func (s *RecordStore) Match(rec models.Record) (Handle, Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matcher.FindMatch(rec.Normalize(), storeIndex{s})
}

// Len liefert die Anzahl gespeicherter Records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Report liefert alle Merge- und Konflikteinträge in zeitlicher Reihenfolge.
func (s *RecordStore) Report() []ReportEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ReportEntry(nil), s.report...)
}

// Conflicts liefert nur die Konflikteinträge des Reports.
func (s *RecordStore) Conflicts() []ReportEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ReportEntry
	for _, e := range s.report {
		if e.IsConflict() {
			out = append(out, e)
		}
	}
	return out
}

// storeIndex ist die Index-Sicht für den Matcher; der Aufrufer hält bereits das Lock.
type storeIndex struct{ s *RecordStore }

func (ix storeIndex) HandleByDOI(doi string) (Handle, bool) {
	h, ok := ix.s.byDOI[doi]
	return h, ok
}

func (ix storeIndex) HandleByPMID(pmid string) (Handle, bool) {
	h, ok := ix.s.byPMID[pmid]
	return h, ok
}

func (ix storeIndex) HandleByTrialID(trialID string) (Handle, bool) {
	h, ok := ix.s.byTrialID[trialID]
	return h, ok
}

func (ix storeIndex) ScanTitles(fn func(h Handle, normalizedTitle string) bool) {
	for i, sr := range ix.s.records {
		if sr.normTitle == "" {
			continue
		}
		if !fn(Handle(i), sr.normTitle) {
			return
		}
	}
}
